package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxUpstreamBodyBytes = 8 << 20

var errRateLimitWait = errors.New("rate limiter wait exceeds the request deadline")

// upstreamClient performs JSON requests against the public geodata services.
// Every request carries the configured User-Agent, waits on the optional rate
// limiter, and is retried once after retryDelay when the failure is transient.
type upstreamClient struct {
	service     string
	httpClient  *http.Client
	userAgent   string
	limiter     *rate.Limiter
	retryDelay  time.Duration
	maxAttempts int
	logger      *slog.Logger
}

func (c *upstreamClient) getJSON(ctx context.Context, endpoint string, params url.Values, timeout time.Duration, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse %s URL: %w", c.service, err)
	}
	q := u.Query()
	for key, values := range params {
		q[key] = values
	}
	u.RawQuery = q.Encode()
	target := u.String()

	body, err := c.do(ctx, timeout, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.service, err)
	}
	return nil
}

// postForm sends an urlencoded form and returns the raw response body.
func (c *upstreamClient) postForm(ctx context.Context, endpoint string, form url.Values, timeout time.Duration) ([]byte, error) {
	encoded := form.Encode()
	return c.do(ctx, timeout, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

func (c *upstreamClient) do(ctx context.Context, timeout time.Duration, newRequest func(context.Context) (*http.Request, error)) ([]byte, error) {
	attempts := max(c.maxAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.attempt(ctx, timeout, newRequest)
		if err == nil {
			upstreamRequestsTotal.WithLabelValues(c.service, "ok").Inc()
			return body, nil
		}
		lastErr = err
		if attempt == attempts || !isTransient(err) || ctx.Err() != nil {
			break
		}

		upstreamRequestsTotal.WithLabelValues(c.service, "retry").Inc()
		c.logger.Warn("upstream request failed, retrying", "service", c.service, "attempt", attempt, "error", err)
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			upstreamRequestsTotal.WithLabelValues(c.service, "error").Inc()
			return nil, fmt.Errorf("%s request aborted: %w", c.service, ctx.Err())
		}
	}
	upstreamRequestsTotal.WithLabelValues(c.service, "error").Inc()
	return nil, lastErr
}

// attempt performs one request. The timeout covers the rate limiter wait as
// well, so a queued request fails at once when its slot would come too late.
func (c *upstreamClient) attempt(ctx context.Context, timeout time.Duration, newRequest func(context.Context) (*http.Request, error)) ([]byte, error) {
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(reqCtx); err != nil {
			return nil, fmt.Errorf("%s %w: %w", c.service, errRateLimitWait, err)
		}
	}

	req, err := newRequest(reqCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", c.service, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &upstreamStatusError{Service: c.service, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.service, err)
	}
	return body, nil
}

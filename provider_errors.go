package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ProviderErrorKind classifies failures of external provider search so the
// caller can pick a user-facing message and a log level.
type ProviderErrorKind int

const (
	ProviderErrorUnknown ProviderErrorKind = iota
	// ProviderErrorConfiguration: missing credentials or an unknown backend.
	ProviderErrorConfiguration
	// ProviderErrorLocationUnresolved: the location could not be geocoded.
	ProviderErrorLocationUnresolved
	// ProviderErrorBusy: the upstream kept answering 429/502/503/504.
	ProviderErrorBusy
	// ProviderErrorUnavailable: network failure or timeout.
	ProviderErrorUnavailable
	// ProviderErrorUpstream: non-retryable status or a payload we cannot read.
	ProviderErrorUpstream
)

func (k ProviderErrorKind) String() string {
	switch k {
	case ProviderErrorConfiguration:
		return "configuration"
	case ProviderErrorLocationUnresolved:
		return "location_unresolved"
	case ProviderErrorBusy:
		return "busy"
	case ProviderErrorUnavailable:
		return "unavailable"
	case ProviderErrorUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

const (
	msgProviderBusy        = "External provider is temporarily busy. Please try again."
	msgProviderUnavailable = "External provider is temporarily unavailable."
	msgProviderFailed      = "External provider request failed."
	msgProviderMalformed   = "External provider returned an unexpected response."
	msgExternalGeneric     = "External provider search is temporarily unavailable."
)

// ProviderError is returned by provider backends and the geocoder. Message is
// safe to show to end users; Error() also carries the cause for logs.
type ProviderError struct {
	Kind    ProviderErrorKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newConfigurationError(msg string) *ProviderError {
	return &ProviderError{Kind: ProviderErrorConfiguration, Message: msg}
}

// newLocationUnresolvedError names the extra input most likely to help.
func newLocationUnresolvedError(country string) *ProviderError {
	hint := "city/state"
	if countryIsCanada(country) {
		hint = "city + province"
	}
	return &ProviderError{
		Kind:    ProviderErrorLocationUnresolved,
		Message: fmt.Sprintf("Couldn't locate that location for external results. Please add %s (or allow device location).", hint),
	}
}

// upstreamStatusError is a non-2xx answer from an upstream HTTP service.
type upstreamStatusError struct {
	Service    string
	StatusCode int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Service, e.StatusCode)
}

var retryableStatusCodes = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// isTransient reports whether err is worth one more attempt.
func isTransient(err error) bool {
	if errors.Is(err, errRateLimitWait) {
		return false
	}
	var statusErr *upstreamStatusError
	if errors.As(err, &statusErr) {
		return retryableStatusCodes[statusErr.StatusCode]
	}
	return isNetworkError(err)
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classifyUpstreamError wraps a raw upstream failure into a ProviderError.
// Errors that are already ProviderErrors pass through unchanged.
func classifyUpstreamError(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr
	}

	var statusErr *upstreamStatusError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &statusErr) && retryableStatusCodes[statusErr.StatusCode]:
		return &ProviderError{Kind: ProviderErrorBusy, Message: msgProviderBusy, Err: err}
	case errors.As(err, &statusErr):
		return &ProviderError{Kind: ProviderErrorUpstream, Message: msgProviderFailed, Err: err}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return &ProviderError{Kind: ProviderErrorUpstream, Message: msgProviderMalformed, Err: err}
	case errors.Is(err, errRateLimitWait):
		return &ProviderError{Kind: ProviderErrorUnavailable, Message: msgProviderUnavailable, Err: err}
	case isNetworkError(err):
		return &ProviderError{Kind: ProviderErrorUnavailable, Message: msgProviderUnavailable, Err: err}
	}
	return &ProviderError{Kind: ProviderErrorUnknown, Message: msgExternalGeneric, Err: err}
}

// externalErrorMessage converts any external search failure into the text
// shown next to the results.
func externalErrorMessage(err error) (string, ProviderErrorKind) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Message, providerErr.Kind
	}
	return msgExternalGeneric, ProviderErrorUnknown
}

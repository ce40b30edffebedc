package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHandler is a test HTTP handler that simulates the behavior of real handlers.
func mockHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "OK")
	case http.MethodPost:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "Not Found")
	case http.MethodPut:
		// No explicit status code.
		_, _ = io.WriteString(w, "Implicit OK")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = io.WriteString(w, "Method Not Allowed")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "Successful GET request", method: http.MethodGet, path: "/test", expectedStatus: http.StatusOK},
		{name: "Not Found POST request", method: http.MethodPost, path: "/test", expectedStatus: http.StatusNotFound},
		{name: "Method Not Allowed DELETE request", method: http.MethodDelete, path: "/another", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Implicit OK for PUT request", method: http.MethodPut, path: "/implicit", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpRequestsTotal.Reset()

			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()

			handler := metricsMiddleware(http.HandlerFunc(mockHandler))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)

			counter := httpRequestsTotal.With(prometheus.Labels{"path": tt.path, "method": tt.method, "code": strconv.Itoa(tt.expectedStatus)})
			err := testutil.CollectAndCompare(counter, strings.NewReader(
				`# HELP localservices_http_requests_total Total number of HTTP requests by path, method and code.
				# TYPE localservices_http_requests_total counter
				localservices_http_requests_total{code="`+strconv.Itoa(tt.expectedStatus)+`",method="`+tt.method+`",path="`+tt.path+`"} 1
				`,
			), "localservices_http_requests_total")
			assert.NoError(t, err)
		})
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	httpRequestsTotal.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/providers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := metricsMiddleware(mux)

	for _, id := range []string{"1", "2", "3"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/providers/"+id, nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET /api/providers/{id}", http.MethodGet, "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(httpRequestsTotal))
}

func TestCorsMiddleware(t *testing.T) {
	called := false
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("regular request", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), userIDHeader)
		assert.True(t, called)
	})

	t.Run("preflight", func(t *testing.T) {
		called = false
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/profile", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.False(t, called)
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
	}{
		{name: "valid token", token: "s3cret", header: "Bearer s3cret", wantStatus: http.StatusOK},
		{name: "wrong token", token: "s3cret", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "missing header", token: "s3cret", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", token: "s3cret", header: "Basic s3cret", wantStatus: http.StatusUnauthorized},
		{name: "admin disabled", token: "", header: "Bearer ", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &apiConfig{adminToken: tt.token, logger: newTestLogger()}
			handler := cfg.adminAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

// mockTransport is a custom http.RoundTripper for testing client-side middleware.
type mockTransport struct {
	resp *http.Response
	err  error
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.resp, t.err
}

func TestMetricsTransport(t *testing.T) {
	tests := []struct {
		name        string
		transport   http.RoundTripper
		expectError bool
	}{
		{
			name: "Successful RoundTrip",
			transport: &mockTransport{
				resp: &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader("OK")),
				},
			},
		},
		{
			name:        "Error RoundTrip",
			transport:   &mockTransport{err: errors.New("network error")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			externalRequestDuration.Reset()

			metricsT := &metricsTransport{wrapped: tt.transport}
			req := httptest.NewRequest(http.MethodGet, "http://testhost/api", nil)

			resp, err := metricsT.RoundTrip(req)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}

			observer := externalRequestDuration.WithLabelValues(req.URL.Host)
			metric := &dto.Metric{}
			require.NoError(t, observer.(prometheus.Metric).Write(metric))
			require.NotNil(t, metric.Histogram, "metric is not a histogram")
			assert.Equal(t, uint64(1), metric.Histogram.GetSampleCount())
		})
	}
}

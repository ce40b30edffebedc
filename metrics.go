package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This file defines the Prometheus metrics that are exposed by the application.

// httpRequestsTotal counts served requests by route pattern, method and status code.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "localservices_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

// externalSearchesTotal counts external provider searches by backend and outcome
// ("ok", "cache_hit", or a ProviderErrorKind name).
var externalSearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "localservices_external_searches_total",
	Help: "Total number of external provider searches by backend and outcome.",
}, []string{"backend", "outcome"})

// upstreamRequestsTotal counts calls to geocoding and POI services.
var upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "localservices_upstream_requests_total",
	Help: "Total number of upstream requests by service and outcome.",
}, []string{"service", "outcome"})

var cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "localservices_cache_lookups_total",
	Help: "Total number of cache lookups by key prefix and result.",
}, []string{"prefix", "result"})

// externalRequestDuration observes round trips to upstream services by host.
var externalRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "localservices_external_request_duration_seconds",
	Help:    "Duration of outgoing HTTP requests by host.",
	Buckets: prometheus.DefBuckets,
}, []string{"host"})

// metricsTransport times every outgoing request, failed ones included.
type metricsTransport struct {
	wrapped http.RoundTripper
}

func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	timer := prometheus.NewTimer(externalRequestDuration.WithLabelValues(req.URL.Host))
	defer timer.ObserveDuration()
	return t.wrapped.RoundTrip(req)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exposition = `# HELP localservices_external_searches_total External provider searches by backend and outcome.
# TYPE localservices_external_searches_total counter
localservices_external_searches_total{backend="OSM",outcome="ok"} 12
localservices_external_searches_total{backend="OSM",outcome="busy"} 2
# HELP localservices_external_request_duration_seconds Upstream request latency.
# TYPE localservices_external_request_duration_seconds histogram
localservices_external_request_duration_seconds_bucket{upstream="overpass",le="0.1"} 1
localservices_external_request_duration_seconds_bucket{upstream="overpass",le="0.5"} 3
localservices_external_request_duration_seconds_bucket{upstream="overpass",le="+Inf"} 4
localservices_external_request_duration_seconds_sum{upstream="overpass"} 1.2
localservices_external_request_duration_seconds_count{upstream="overpass"} 4
# HELP go_gc_duration_seconds A summary of GC pauses.
# TYPE go_gc_duration_seconds summary
go_gc_duration_seconds{quantile="0.5"} 0.001
go_gc_duration_seconds_sum 0.01
go_gc_duration_seconds_count 3
`

type fakeWriter struct {
	requests []*monitoringpb.CreateTimeSeriesRequest
	err      error
}

func (f *fakeWriter) CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error {
	f.requests = append(f.requests, req)
	return f.err
}

func newTestScraper(t *testing.T, body string, status int) (*scraper, *fakeWriter) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	writer := &fakeWriter{}
	return &scraper{
		metricsURL: server.URL + "/metrics",
		projectID:  "directory-prod",
		location:   "northamerica-northeast1",
		namespace:  "localservices",
		httpClient: server.Client(),
		writer:     writer,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	}, writer
}

func TestScrapeAndIngest(t *testing.T) {
	s, writer := newTestScraper(t, exposition, http.StatusOK)

	n, err := s.scrapeAndIngest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n, "summary is skipped")

	require.Len(t, writer.requests, 1)
	req := writer.requests[0]
	assert.Equal(t, "projects/directory-prod", req.GetName())

	byOutcome := map[string]float64{}
	var hist *monitoringpb.TimeSeries
	for _, ts := range req.GetTimeSeries() {
		assert.Equal(t, "prometheus_target", ts.GetResource().GetType())
		assert.Equal(t, "localservices", ts.GetResource().GetLabels()["namespace"])
		switch ts.GetMetric().GetType() {
		case "prometheus.googleapis.com/localservices_external_searches_total":
			byOutcome[ts.GetMetric().GetLabels()["outcome"]] = ts.GetPoints()[0].GetValue().GetDoubleValue()
		case "prometheus.googleapis.com/localservices_external_request_duration_seconds":
			hist = ts
		default:
			t.Errorf("unexpected series %s", ts.GetMetric().GetType())
		}
	}
	assert.Equal(t, map[string]float64{"ok": 12, "busy": 2}, byOutcome)

	require.NotNil(t, hist)
	assert.Equal(t, "overpass", hist.GetMetric().GetLabels()["upstream"])
	dist := hist.GetPoints()[0].GetValue().GetDistributionValue()
	require.NotNil(t, dist)
	assert.Equal(t, int64(4), dist.GetCount())
	assert.InDelta(t, 0.3, dist.GetMean(), 1e-9)
	assert.Equal(t, []float64{0.1, 0.5}, dist.GetBucketOptions().GetExplicitBuckets().GetBounds())
	assert.Equal(t, []int64{1, 2, 1}, dist.GetBucketCounts())
}

func TestScrapeAndIngestBatches(t *testing.T) {
	var b strings.Builder
	b.WriteString("# TYPE localservices_cache_lookups_total counter\n")
	for i := range ingestBatchSize + 5 {
		fmt.Fprintf(&b, "localservices_cache_lookups_total{key=\"k%d\"} %d\n", i, i)
	}
	s, writer := newTestScraper(t, b.String(), http.StatusOK)

	n, err := s.scrapeAndIngest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ingestBatchSize+5, n)
	require.Len(t, writer.requests, 2)
	assert.Len(t, writer.requests[0].GetTimeSeries(), ingestBatchSize)
	assert.Len(t, writer.requests[1].GetTimeSeries(), 5)
}

func TestScrapeAndIngestErrors(t *testing.T) {
	t.Run("metrics endpoint down", func(t *testing.T) {
		s, writer := newTestScraper(t, "", http.StatusServiceUnavailable)
		_, err := s.scrapeAndIngest(context.Background())
		assert.ErrorContains(t, err, "returned 503")
		assert.Empty(t, writer.requests)
	})

	t.Run("unparseable body", func(t *testing.T) {
		s, _ := newTestScraper(t, "this is { not metrics\n", http.StatusOK)
		_, err := s.scrapeAndIngest(context.Background())
		assert.ErrorContains(t, err, "could not parse metrics")
	})

	t.Run("write failure", func(t *testing.T) {
		s, writer := newTestScraper(t, exposition, http.StatusOK)
		writer.err = errors.New("permission denied")
		_, err := s.scrapeAndIngest(context.Background())
		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("nothing to write", func(t *testing.T) {
		s, writer := newTestScraper(t, "", http.StatusOK)
		n, err := s.scrapeAndIngest(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, writer.requests)
	})
}

func TestServeHTTP(t *testing.T) {
	s, _ := newTestScraper(t, exposition, http.StatusOK)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ingested 3 series\n", rr.Body.String())

	s, _ = newTestScraper(t, "", http.StatusBadGateway)
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// Command scraper pushes the directory API's Prometheus metrics into Google
// Cloud Monitoring. It runs as its own container and does one scrape per
// incoming request, so a scheduler decides the interval.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/genproto/googleapis/api/distribution"
	"google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	metricTypePrefix = "prometheus.googleapis.com/"
	// ingestBatchSize is the Cloud Monitoring limit on series per write.
	ingestBatchSize = 200
)

// timeSeriesWriter is the part of the Cloud Monitoring client the scraper
// uses.
type timeSeriesWriter interface {
	CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error
}

type metricClientWriter struct {
	client *monitoring.MetricClient
}

func (w metricClientWriter) CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error {
	return w.client.CreateTimeSeries(ctx, req)
}

type scraper struct {
	metricsURL string
	projectID  string
	location   string
	namespace  string
	httpClient *http.Client
	writer     timeSeriesWriter
	logger     *slog.Logger
	now        func() time.Time
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	metricsURL := os.Getenv("METRICS_URL")
	projectID := os.Getenv("PROJECT_ID")
	if metricsURL == "" || projectID == "" {
		logger.Error("METRICS_URL and PROJECT_ID must be set")
		os.Exit(1)
	}

	client, err := monitoring.NewMetricClient(context.Background())
	if err != nil {
		logger.Error("failed to create monitoring client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	s := &scraper{
		metricsURL: metricsURL,
		projectID:  projectID,
		location:   envOr("MONITORING_LOCATION", "northamerica-northeast1"),
		namespace:  envOr("MONITORING_NAMESPACE", "localservices"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		writer:     metricClientWriter{client: client},
		logger:     logger,
		now:        time.Now,
	}

	port := envOr("PORT", "8080")
	mux := http.NewServeMux()
	mux.Handle("POST /", s)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	logger.Info("starting scraper", "port", port, "metrics_url", metricsURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("scraper server failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ServeHTTP runs one scrape and reports how many series were written.
func (s *scraper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := s.scrapeAndIngest(r.Context())
	if err != nil {
		s.logger.Error("scrape failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("scrape finished", "series", n)
	fmt.Fprintf(w, "ingested %d series\n", n)
}

func (s *scraper) scrapeAndIngest(ctx context.Context) (int, error) {
	families, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}
	series := s.toTimeSeries(families)
	if len(series) == 0 {
		return 0, nil
	}
	for start := 0; start < len(series); start += ingestBatchSize {
		end := min(start+ingestBatchSize, len(series))
		err := s.writer.CreateTimeSeries(ctx, &monitoringpb.CreateTimeSeriesRequest{
			Name:       "projects/" + s.projectID,
			TimeSeries: series[start:end],
		})
		if err != nil {
			return start, fmt.Errorf("could not write time series: %w", err)
		}
	}
	return len(series), nil
}

func (s *scraper) fetch(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.metricsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build metrics request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("metrics endpoint returned %d", resp.StatusCode)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not parse metrics: %w", err)
	}
	return families, nil
}

// toTimeSeries converts every sample it understands. Summaries and unknown
// types are skipped.
func (s *scraper) toTimeSeries(families map[string]*dto.MetricFamily) []*monitoringpb.TimeSeries {
	resource := &monitoredres.MonitoredResource{
		Type: "prometheus_target",
		Labels: map[string]string{
			"project_id": s.projectID,
			"location":   s.location,
			"cluster":    "__gce__",
			"namespace":  s.namespace,
			"job":        s.namespace,
			"instance":   s.metricsURL,
		},
	}
	now := timestamppb.New(s.now())

	var out []*monitoringpb.TimeSeries
	for name, mf := range families {
		for _, m := range mf.GetMetric() {
			var point *monitoringpb.Point
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				point = doublePoint(now, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				point = doublePoint(now, m.GetGauge().GetValue())
			case dto.MetricType_UNTYPED:
				point = doublePoint(now, m.GetUntyped().GetValue())
			case dto.MetricType_HISTOGRAM:
				point = s.distributionPoint(now, name, m.GetHistogram())
			default:
				s.logger.Debug("skipping metric", "metric", name, "type", mf.GetType().String())
				continue
			}

			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, &monitoringpb.TimeSeries{
				Metric:   &metric.Metric{Type: metricTypePrefix + name, Labels: labels},
				Resource: resource,
				Points:   []*monitoringpb.Point{point},
			})
		}
	}
	return out
}

func doublePoint(ts *timestamppb.Timestamp, v float64) *monitoringpb.Point {
	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{EndTime: ts},
		Value:    &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: v}},
	}
}

// distributionPoint turns cumulative Prometheus buckets into per-bucket
// counts. The trailing +Inf bucket becomes the overflow bucket.
func (s *scraper) distributionPoint(ts *timestamppb.Timestamp, name string, h *dto.Histogram) *monitoringpb.Point {
	buckets := h.GetBucket()
	var bounds []float64
	counts := make([]int64, 0, len(buckets)+1)
	var prev uint64
	for _, b := range buckets {
		if math.IsInf(b.GetUpperBound(), 1) {
			continue
		}
		bounds = append(bounds, b.GetUpperBound())
		counts = append(counts, s.capCount(name, b.GetCumulativeCount()-prev))
		prev = b.GetCumulativeCount()
	}
	total := h.GetSampleCount()
	counts = append(counts, s.capCount(name, total-min(prev, total)))

	var mean float64
	if total > 0 {
		mean = h.GetSampleSum() / float64(total)
	}

	dist := &distribution.Distribution{
		Count: s.capCount(name, total),
		Mean:  mean,
		BucketOptions: &distribution.Distribution_BucketOptions{
			Options: &distribution.Distribution_BucketOptions_ExplicitBuckets{
				ExplicitBuckets: &distribution.Distribution_BucketOptions_Explicit{Bounds: bounds},
			},
		},
		BucketCounts: counts,
	}
	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{EndTime: ts},
		Value:    &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DistributionValue{DistributionValue: dist}},
	}
}

func (s *scraper) capCount(name string, v uint64) int64 {
	if v > math.MaxInt64 {
		s.logger.Warn("histogram count exceeds int64, capping", "metric", name)
		return math.MaxInt64
	}
	return int64(v)
}

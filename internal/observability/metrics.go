package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// census pipeline.
type Metrics struct {
	registry *prometheus.Registry

	FeaturesFetched  *prometheus.CounterVec // labels: dataset={trees,districts}
	CacheReads       *prometheus.CounterVec // labels: dataset, result={hit,miss}
	DownloadBytes    *prometheus.CounterVec // labels: dataset
	ParseErrors      prometheus.Counter
	RecordsDiscarded *prometheus.CounterVec // labels: reason
	RecordsKept      prometheus.Counter
	StageDuration    *prometheus.HistogramVec // labels: stage
	PipelineRunning  prometheus.Gauge
}

// NewMetrics creates all pipeline metrics on a private registry, so repeated
// in-process construction (tests, genfixture) never panics with duplicate
// registrations.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics()
	m.registry = reg
	reg.MustRegister(
		m.FeaturesFetched,
		m.CacheReads,
		m.DownloadBytes,
		m.ParseErrors,
		m.RecordsDiscarded,
		m.RecordsKept,
		m.StageDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeaturesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tree_census",
			Name:      "features_fetched_total",
			Help:      "GeoJSON features decoded per dataset.",
		}, []string{"dataset"}),
		CacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tree_census",
			Name:      "cache_reads_total",
			Help:      "Download cache lookups by dataset and result.",
		}, []string{"dataset", "result"}),
		DownloadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tree_census",
			Name:      "download_bytes_total",
			Help:      "Bytes fetched from the open-data portal per dataset.",
		}, []string{"dataset"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tree_census",
			Name:      "parse_errors_total",
			Help:      "Features that failed to parse into tree records.",
		}),
		RecordsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tree_census",
			Name:      "records_discarded_total",
			Help:      "Cleaned records dropped by validation or the spatial join.",
		}, []string{"reason"}),
		RecordsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tree_census",
			Name:      "records_kept_total",
			Help:      "Records that made it into the analysis table.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tree_census",
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tree_census",
			Name:      "pipeline_running",
			Help:      "1 while the batch run is active.",
		}),
	}
}

// WriteTextfile dumps the registry in Prometheus text exposition format,
// suitable for the node_exporter textfile collector. The write is atomic
// (tmp + rename) so a collector never scrapes a half-written file.
func (m *Metrics) WriteTextfile(path string) error {
	if m.registry == nil {
		return fmt.Errorf("metrics were built for testing, nothing to gather")
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".metrics-*")
	if err != nil {
		return fmt.Errorf("create metrics tempfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, fam := range families {
		if _, err := expfmt.MetricFamilyToText(tmp, fam); err != nil {
			tmp.Close()
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metrics tempfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish metrics file: %w", err)
	}
	return nil
}

// Package observability collects run metrics for covkit batch work.
//
// Metrics live in a private Prometheus registry and are written out in the
// node-exporter textfile format at the end of a run, since the toolkit is a
// short lived process with nothing to scrape.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "covkit"

// Metrics holds all metrics for a covkit process.
type Metrics struct {
	registry *prometheus.Registry

	// Algorithm metrics
	algorithmDuration *prometheus.HistogramVec
	selectedTests     *prometheus.CounterVec
	clustersBuilt     *prometheus.CounterVec

	// Batch metrics
	jobDuration         *prometheus.HistogramVec
	itemFailures        *prometheus.CounterVec
	translationFailures prometheus.Counter
	lastSuccess         *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		algorithmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "algorithm_duration_seconds",
			Help:      "Wall time of one algorithm run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"kind", "algorithm"}),
		selectedTests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selected_tests_total",
			Help:      "Tests emitted by prioritization runs.",
		}, []string{"algorithm"}),
		clustersBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clusters_total",
			Help:      "Clusters produced by clustering runs.",
		}, []string{"algorithm"}),

		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of one batch job.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"status"}),
		itemFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_failures_total",
			Help:      "Failed units of batch work.",
		}, []string{"stage"}),
		translationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_failures_total",
			Help:      "Ids that could not be translated between matrices.",
		}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run of a job.",
		}, []string{"job"}),
	}

	m.registry.MustRegister(
		m.algorithmDuration,
		m.selectedTests,
		m.clustersBuilt,
		m.jobDuration,
		m.itemFailures,
		m.translationFailures,
		m.lastSuccess,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Algorithm metrics accessors
func (m *Metrics) AlgorithmDuration() *prometheus.HistogramVec { return m.algorithmDuration }
func (m *Metrics) SelectedTests() *prometheus.CounterVec       { return m.selectedTests }
func (m *Metrics) ClustersBuilt() *prometheus.CounterVec       { return m.clustersBuilt }

// Batch metrics accessors
func (m *Metrics) JobDuration() *prometheus.HistogramVec { return m.jobDuration }
func (m *Metrics) ItemFailures() *prometheus.CounterVec  { return m.itemFailures }
func (m *Metrics) TranslationFailures() prometheus.Counter {
	return m.translationFailures
}
func (m *Metrics) LastSuccess() *prometheus.GaugeVec { return m.lastSuccess }

// ObserveAlgorithm records the duration of one algorithm run since start.
func (m *Metrics) ObserveAlgorithm(kind, algorithm string, start time.Time) {
	m.algorithmDuration.WithLabelValues(kind, algorithm).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

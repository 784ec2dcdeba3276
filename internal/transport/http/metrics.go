package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for the analysis API.
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal   *prometheus.CounterVec
	analysisSeconds prometheus.Histogram
	warningsTotal   prometheus.Counter
}

// NewMetrics creates the metric set on its own registry so concurrent
// test servers do not collide on the default one.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		analysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "examstats_analyses_total",
			Help: "Analysis requests by outcome.",
		}, []string{"outcome"}),
		analysisSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "examstats_analysis_duration_seconds",
			Help:    "End-to-end analysis duration.",
			Buckets: prometheus.DefBuckets,
		}),
		warningsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "examstats_data_quality_warnings_total",
			Help: "Data-quality warnings surfaced by completed analyses.",
		}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAnalysis records one completed or failed analysis.
func (m *Metrics) ObserveAnalysis(outcome string, seconds float64, warnings int) {
	m.analysesTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.analysisSeconds.Observe(seconds)
		m.warningsTotal.Add(float64(warnings))
	}
}

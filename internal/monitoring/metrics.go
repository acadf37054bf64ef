// internal/monitoring/metrics.go

// Package monitoring provides Prometheus metrics and the HTTP endpoint that
// exposes them alongside a health check.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects pipeline metrics. All methods are nil-safe so the pipeline
// can run with monitoring disabled.
type Metrics struct {
	pagesScraped       *prometheus.CounterVec
	navigationTimeouts *prometheus.CounterVec
	extractionErrors   *prometheus.CounterVec
	batchDuration      *prometheus.HistogramVec
	recordsMerged      prometheus.Counter
	recordsWritten     *prometheus.CounterVec
}

// NewMetrics creates and registers pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		pagesScraped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadscrapexter",
			Name:      "pages_scraped_total",
			Help:      "Pages processed per strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		navigationTimeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadscrapexter",
			Name:      "navigation_timeouts_total",
			Help:      "Navigation timeouts per strategy.",
		}, []string{"strategy"}),
		extractionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadscrapexter",
			Name:      "extraction_errors_total",
			Help:      "Error-tagged records per strategy.",
		}, []string{"strategy"}),
		batchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadscrapexter",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one strategy batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"strategy"}),
		recordsMerged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "leadscrapexter",
			Name:      "records_merged_total",
			Help:      "Merged records produced by reconciliation.",
		}),
		recordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadscrapexter",
			Name:      "records_written_total",
			Help:      "Records written per output format.",
		}, []string{"format"}),
	}
}

// PageScraped records one processed page.
func (m *Metrics) PageScraped(strategy string, failed bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "error"
		m.extractionErrors.WithLabelValues(strategy).Inc()
	}
	m.pagesScraped.WithLabelValues(strategy, outcome).Inc()
}

// NavigationTimeout records one timed-out navigation.
func (m *Metrics) NavigationTimeout(strategy string) {
	if m == nil {
		return
	}
	m.navigationTimeouts.WithLabelValues(strategy).Inc()
}

// BatchCompleted records the duration of one strategy batch.
func (m *Metrics) BatchCompleted(strategy string, duration time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordsMerged records the size of one reconciliation result.
func (m *Metrics) RecordsMerged(count int) {
	if m == nil {
		return
	}
	m.recordsMerged.Add(float64(count))
}

// RecordsWritten records written output records.
func (m *Metrics) RecordsWritten(format string, count int) {
	if m == nil {
		return
	}
	m.recordsWritten.WithLabelValues(format).Add(float64(count))
}

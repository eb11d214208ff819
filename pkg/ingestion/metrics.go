package ingestion

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIngestion holds the Prometheus metrics for the ingestion
// subsystem, lazily registered on first use. Adapted from the teacher's
// sync.Once-guarded metricsIngestion pattern in pkg/ingestion/metrics.go.
type metricsIngestion struct {
	once sync.Once

	documentsCommitted prometheus.Counter
	documentsSkipped    prometheus.Counter
	parseErrors         prometheus.Counter
	deferredUnresolved  prometheus.Gauge

	parseDuration  prometheus.Histogram
	commitDuration prometheus.Histogram
	totalDuration  prometheus.Histogram
}

var ingMetrics metricsIngestion

func (m *metricsIngestion) init() {
	m.once.Do(func() {
		m.documentsCommitted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traceai_ingestion_documents_committed_total", Help: "Documents committed to the graph",
		})
		m.documentsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traceai_ingestion_documents_skipped_total", Help: "Documents skipped during admission",
		})
		m.parseErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traceai_ingestion_parse_errors_total", Help: "Files that failed to parse",
		})
		m.deferredUnresolved = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traceai_ingestion_deferred_unresolved", Help: "Deferred references still unresolved after a run",
		})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "traceai_ingestion_parse_seconds", Help: "Time spent parsing files", Buckets: buckets,
		})
		m.commitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "traceai_ingestion_commit_seconds", Help: "Time spent committing parsed documents", Buckets: buckets,
		})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "traceai_ingestion_total_seconds", Help: "Total run duration", Buckets: buckets,
		})

		prometheus.MustRegister(
			m.documentsCommitted, m.documentsSkipped, m.parseErrors, m.deferredUnresolved,
			m.parseDuration, m.commitDuration, m.totalDuration,
		)
	})
}

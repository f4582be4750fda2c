package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "energychart"

var (
	// HistoryQueries counts historic data queries by source and result
	HistoryQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_queries_total",
			Help:      "Number of historic data queries by source and result",
		},
		[]string{"source", "result"}, // result: "success", "error", "no_data", "cancelled"
	)

	// HistoryQueryDuration measures the latency of historic data queries
	HistoryQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_query_duration_seconds",
			Help:      "Latency of historic data queries",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"source"},
	)

	// LiveViewers tracks open websocket live views
	LiveViewers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_viewers",
			Help:      "Number of open live energy chart connections",
		},
	)

	// RecordedSnapshots counts records written by the MQTT recorder
	RecordedSnapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorded_snapshots_total",
			Help:      "Number of telemetry snapshots written to the history store",
		},
		[]string{"result"},
	)

	// ReportsGenerated counts generated energy reports
	ReportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Number of generated energy reports by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Register registers all metrics with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HistoryQueries)
		prometheus.MustRegister(HistoryQueryDuration)
		prometheus.MustRegister(LiveViewers)
		prometheus.MustRegister(RecordedSnapshots)
		prometheus.MustRegister(ReportsGenerated)
	})
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// EvaluationsTotal counts per-ticker evaluations by outcome (ok, failed, buy_ready)
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sepa",
			Subsystem: "analyzer",
			Name:      "evaluations_total",
			Help:      "Ticker evaluations by outcome",
		},
		[]string{"outcome"},
	)

	// StageLatency observes fetch and evaluate durations
	StageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sepa",
			Subsystem: "analyzer",
			Name:      "stage_latency_seconds",
			Help:      "Latency of analyzer stages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// ScanDuration is the wall time of the last batch scan
	ScanDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sepa",
			Subsystem: "scan",
			Name:      "last_duration_seconds",
			Help:      "Duration of the last batch scan",
		},
	)

	// ProviderRequests counts upstream requests by provider and status
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sepa",
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Upstream data provider requests",
		},
		[]string{"provider", "status"},
	)

	// CacheLookups counts cache hits and misses by kind
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sepa",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	// HTTPRequests counts API requests
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sepa",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by route and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration observes API latency
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sepa",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method"},
	)
)

// Register registers all collectors with the default registry (idempotent)
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			EvaluationsTotal,
			StageLatency,
			ScanDuration,
			ProviderRequests,
			CacheLookups,
			HTTPRequests,
			HTTPDuration,
		)
	})
}

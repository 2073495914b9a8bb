package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector engine Prometheus metrics.
var (
	EngineOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mnemovec",
			Name:      "engine_ops_total",
			Help:      "Total number of vector engine operations",
		},
		[]string{"op", "collection", "status"},
	)

	EngineOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mnemovec",
			Name:      "engine_op_duration_seconds",
			Help:      "Vector engine operation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op", "collection"},
	)

	EngineReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mnemovec",
			Name:      "engine_reconnects_total",
			Help:      "Total number of vector engine reconnects",
		},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineOpsTotal)
	prometheus.MustRegister(EngineOpDuration)
	prometheus.MustRegister(EngineReconnectsTotal)
	engineMetricsRegistered = true
}

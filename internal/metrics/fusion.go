package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fusion pipeline Prometheus metrics.
var (
	StrategyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reelrank",
			Name:      "strategy_duration_seconds",
			Help:      "Per-strategy ranking call duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy", "status"}, // status: "ok" / "error" / "timeout"
	)

	FusionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reelrank",
			Name:      "fusion_requests_total",
			Help:      "Total hybrid recommendation requests",
		},
		[]string{"result"}, // "cache_hit" / "computed" / "empty"
	)

	FusionCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reelrank",
			Name:      "fusion_candidates",
			Help:      "Distinct candidates entering rank fusion per request",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 400},
		},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reelrank",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	HydrationDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reelrank",
			Name:      "hydration_drops_total",
			Help:      "Fused items dropped because their content id did not resolve",
		},
	)

	ReasoningBankWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reelrank",
			Name:      "reasoning_bank_writes_total",
			Help:      "Fire-and-forget reasoning bank writes",
		},
		[]string{"status"}, // "ok" / "error"
	)
)

var fusionMetricsRegistered bool

// RegisterFusionMetrics registers Prometheus fusion metrics. Must be called once from main.
func RegisterFusionMetrics() {
	if fusionMetricsRegistered {
		return
	}
	prometheus.MustRegister(StrategyDuration)
	prometheus.MustRegister(FusionRequestsTotal)
	prometheus.MustRegister(FusionCandidates)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(HydrationDropsTotal)
	prometheus.MustRegister(ReasoningBankWritesTotal)
	fusionMetricsRegistered = true
}

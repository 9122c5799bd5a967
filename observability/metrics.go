package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// StakingMetrics records engine operation activity for the RPC surface.
type StakingMetrics struct {
	Operations *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Latency    *prometheus.HistogramVec
	PoolGauge  prometheus.Gauge
}

var (
	stakingMetricsOnce sync.Once
	stakingRegistry    *StakingMetrics
)

// Staking returns the lazily-initialised staking metrics registry. Collectors
// are registered against the default registerer exactly once.
func Staking() *StakingMetrics {
	stakingMetricsOnce.Do(func() {
		stakingRegistry = &StakingMetrics{
			Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stakevault",
				Subsystem: "staking",
				Name:      "operations_total",
				Help:      "Total staking operations segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stakevault",
				Subsystem: "staking",
				Name:      "failures_total",
				Help:      "Total staking operation failures segmented by method and reason.",
			}, []string{"method", "reason"}),
			Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "stakevault",
				Subsystem: "staking",
				Name:      "operation_duration_seconds",
				Help:      "Latency distribution for staking RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			PoolGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "stakevault",
				Subsystem: "staking",
				Name:      "reward_pool",
				Help:      "Current unencumbered reward pool balance.",
			}),
		}
		prometheus.MustRegister(
			stakingRegistry.Operations,
			stakingRegistry.Failures,
			stakingRegistry.Latency,
			stakingRegistry.PoolGauge,
		)
	})
	return stakingRegistry
}

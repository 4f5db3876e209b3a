package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScheduleClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strontium_schedule_claims_total",
			Help: "Total number of schedules successfully claimed by worker.",
		},
		[]string{"worker_id"},
	)

	ClaimContentionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strontium_claim_contention_total",
			Help: "Total number of claim races lost to another worker.",
		},
		[]string{"worker_id"},
	)

	StaleClaimsReleasedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "strontium_stale_claims_released_total",
			Help: "Total number of stale claims released back to scheduled.",
		},
	)

	StaleClaimsExhaustedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "strontium_stale_claims_exhausted_total",
			Help: "Total number of schedules failed after exhausting retries.",
		},
	)

	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strontium_executions_total",
			Help: "Total number of suite executions by outcome.",
		},
		[]string{"status"},
	)

	ExecutionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strontium_execution_duration_seconds",
			Help:    "Duration of suite executions in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"status"},
	)

	ExecutionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strontium_executions_active",
			Help: "Number of suite executions currently in flight.",
		},
	)
)

// Register registers all custom strontium metrics with the default
// Prometheus registry.
func Register() {
	prometheus.MustRegister(
		ScheduleClaimsTotal,
		ClaimContentionTotal,
		StaleClaimsReleasedTotal,
		StaleClaimsExhaustedTotal,
		ExecutionsTotal,
		ExecutionDurationSeconds,
		ExecutionsActive,
	)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initModelMetrics initializes language model call metrics.
func (m *Manager) initModelMetrics(cfg Config) {
	m.modelCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coremem_model_calls_total",
			Help: "Total number of language model calls by provider, operation and status",
		},
		[]string{"provider", "operation", "status"},
	)

	m.modelDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coremem_model_call_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: cfg.ModelDurationBuckets,
		},
		[]string{"provider", "operation"},
	)

	m.modelTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coremem_model_tokens_total",
			Help: "Tokens consumed by language model calls",
		},
		[]string{"provider", "operation", "direction"},
	)

	m.breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coremem_model_breaker_open",
			Help: "Whether the circuit breaker for a provider is open (1) or not (0)",
		},
		[]string{"provider"},
	)

	m.registry.MustRegister(m.modelCalls)
	m.registry.MustRegister(m.modelDuration)
	m.registry.MustRegister(m.modelTokens)
	m.registry.MustRegister(m.breakerState)
}

// RecordModelCall records one language model call.
func (m *Manager) RecordModelCall(provider, operation, status string, duration time.Duration, inputTokens, outputTokens int) {
	if !m.enabled {
		return
	}
	m.modelCalls.WithLabelValues(provider, operation, status).Inc()
	m.modelDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
	if inputTokens > 0 {
		m.modelTokens.WithLabelValues(provider, operation, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.modelTokens.WithLabelValues(provider, operation, "output").Add(float64(outputTokens))
	}
}

// RecordBreakerState records a circuit breaker transition. The signature
// matches llm.BreakerSettings.OnStateChange.
func (m *Manager) RecordBreakerState(provider, _, to string) {
	if !m.enabled {
		return
	}
	open := 0.0
	if to == "open" {
		open = 1
	}
	m.breakerState.WithLabelValues(provider).Set(open)
}

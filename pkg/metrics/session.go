package metrics

import "github.com/prometheus/client_golang/prometheus"

// initSessionMetrics initializes collection size and busy rejection metrics.
func (m *Manager) initSessionMetrics() {
	m.memories = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coremem_memories",
		Help: "Number of stored memories",
	})
	m.interactions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coremem_interactions",
		Help: "Number of logged interactions",
	})
	m.busyRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coremem_busy_rejections_total",
			Help: "Operations rejected because one of the same kind was in flight",
		},
		[]string{"operation"},
	)

	m.registry.MustRegister(m.memories)
	m.registry.MustRegister(m.interactions)
	m.registry.MustRegister(m.busyRejections)
}

// SetCollectionSizes sets the memory and interaction gauges.
func (m *Manager) SetCollectionSizes(memories, interactions int) {
	if !m.enabled {
		return
	}
	m.memories.Set(float64(memories))
	m.interactions.Set(float64(interactions))
}

// IncBusyRejection counts a rejected store or search.
func (m *Manager) IncBusyRejection(operation string) {
	if !m.enabled {
		return
	}
	m.busyRejections.WithLabelValues(operation).Inc()
}

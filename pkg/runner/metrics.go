package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts node visits and produced states per entrypoint.
type Metrics struct {
	nodeVisits *prometheus.CounterVec
	states     *prometheus.CounterVec
}

// NewMetrics builds the workflow counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchback",
			Name:      "node_visits_total",
			Help:      "Node invocations by entrypoint and node.",
		}, []string{"entrypoint", "node"}),
		states: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchback",
			Name:      "states_total",
			Help:      "Produced state strings by entrypoint and state.",
		}, []string{"entrypoint", "state"}),
	}
	if reg != nil {
		reg.MustRegister(m.nodeVisits, m.states)
	}
	return m
}

// Observer returns a StepObserver that records visits under entrypoint.
func (m *Metrics) Observer(entrypoint string) StepObserver {
	return func(node, state string, _ any) {
		m.nodeVisits.WithLabelValues(entrypoint, node).Inc()
		m.states.WithLabelValues(entrypoint, state).Inc()
	}
}

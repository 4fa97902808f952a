package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the consent gate.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Denials     prometheus.Counter
}

// New creates a Metrics instance with all consent metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medivault_consent_transitions_total",
			Help: "Consent state transitions, by resulting state",
		}, []string{"state"}),

		Denials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medivault_consent_denials_total",
			Help: "Protected operations refused by the consent gate",
		}),
	}
}

// ObserveTransition records a completed transition.
func (m *Metrics) ObserveTransition(state string) {
	if m != nil {
		m.Transitions.WithLabelValues(state).Inc()
	}
}

// ObserveDenial records a gate refusal.
func (m *Metrics) ObserveDenial() {
	if m != nil {
		m.Denials.Inc()
	}
}

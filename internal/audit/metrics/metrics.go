package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit trail.
type Metrics struct {
	Appends        *prometheus.CounterVec
	AppendFailures prometheus.Counter
}

// New creates a Metrics instance with all audit metrics registered.
func New() *Metrics {
	return &Metrics{
		Appends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medivault_audit_appends_total",
			Help: "Audit entries appended, by action kind",
		}, []string{"action"}),

		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medivault_audit_append_failures_total",
			Help: "Audit appends that failed and aborted their triggering action",
		}),
	}
}

// ObserveAppend records a successful append.
func (m *Metrics) ObserveAppend(action string) {
	if m != nil {
		m.Appends.WithLabelValues(action).Inc()
	}
}

// ObserveFailure records a failed append.
func (m *Metrics) ObserveFailure() {
	if m != nil {
		m.AppendFailures.Inc()
	}
}

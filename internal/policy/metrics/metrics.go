package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for policy resolution.
type Metrics struct {
	FieldResolutions *prometheus.CounterVec
	Anomalies        *prometheus.CounterVec
}

// New creates a Metrics instance with all policy metrics registered.
func New() *Metrics {
	return &Metrics{
		FieldResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medivault_policy_field_resolutions_total",
			Help: "Field visibility resolutions by role and resolved mode",
		}, []string{"role", "mode"}),

		Anomalies: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medivault_policy_anomalies_total",
			Help: "Fields that degraded during resolution, by anomaly kind",
		}, []string{"kind"}),
	}
}

// ObserveFieldResolution records one field's resolved mode.
func (m *Metrics) ObserveFieldResolution(role, mode string) {
	if m != nil {
		m.FieldResolutions.WithLabelValues(role, mode).Inc()
	}
}

// ObserveAnomaly records a degraded field.
func (m *Metrics) ObserveAnomaly(kind string) {
	if m != nil {
		m.Anomalies.WithLabelValues(kind).Inc()
	}
}

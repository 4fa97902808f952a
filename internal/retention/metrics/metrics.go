package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for retention reporting.
type Metrics struct {
	Statuses *prometheus.GaugeVec
}

// New creates a Metrics instance with all retention metrics registered.
func New() *Metrics {
	return &Metrics{
		Statuses: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "medivault_retention_records",
			Help: "Records per retention status as of the latest report",
		}, []string{"status"}),
	}
}

// ObserveReport records the per-status counts of a completed report.
func (m *Metrics) ObserveReport(counts map[string]int) {
	if m == nil {
		return
	}
	for status, count := range counts {
		m.Statuses.WithLabelValues(status).Set(float64(count))
	}
}

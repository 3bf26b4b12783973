package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeScheduled = "scheduled"
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Metrics exposes notification state to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	unread   prometheus.Gauge
	arrivals *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		unread: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notifications_unread",
			Help: "Number of unread notifications in the store",
		}),
		arrivals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_arrivals_total",
			Help: "Simulated arrivals by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) setUnread(n int) {
	if m == nil {
		return
	}
	m.unread.Set(float64(n))
}

func (m *Metrics) arrival(outcome string) {
	if m == nil {
		return
	}
	m.arrivals.WithLabelValues(outcome).Inc()
}

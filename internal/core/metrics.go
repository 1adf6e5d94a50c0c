package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rentcore/pkg/domain"
)

// Metrics records transaction outcomes and occupancy levels on a dedicated
// Prometheus registry.
type Metrics struct {
	registry      *prometheus.Registry
	transactions  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	occupiedUnits *prometheus.GaugeVec
	totalUnits    *prometheus.GaugeVec
}

// NewMetrics constructs and registers the rentcore metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rentcore",
			Name:      "transactions_total",
			Help:      "Transactions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rentcore",
			Name:      "transaction_duration_seconds",
			Help:      "Transaction duration by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		occupiedUnits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rentcore",
			Name:      "property_occupied_units",
			Help:      "Occupied unit count per property.",
		}, []string{"property"}),
		totalUnits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rentcore",
			Name:      "property_total_units",
			Help:      "Declared unit count per property.",
		}, []string{"property"}),
	}
	m.registry.MustRegister(m.transactions, m.duration, m.occupiedUnits, m.totalUnits)
	return m
}

// Registry exposes the metric registry for HTTP handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeTransaction(op string, d time.Duration, err error) {
	outcome := "committed"
	if err != nil {
		outcome = "rejected"
	}
	m.transactions.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) setOccupancy(properties []domain.Property) {
	for _, p := range properties {
		m.occupiedUnits.WithLabelValues(p.ID).Set(float64(p.OccupiedUnits))
		m.totalUnits.WithLabelValues(p.ID).Set(float64(p.TotalUnits))
	}
}

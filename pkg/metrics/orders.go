package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// OrderMetrics tracks order intake.
type OrderMetrics struct {
	created        prometheus.Counter
	stockConflicts prometheus.Counter
	value          prometheus.Histogram
}

// NewOrderMetrics registers the order collectors on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed.",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_stock_conflicts_total",
		Help: "Orders rolled back because stock changed underneath them.",
	})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_value",
		Help:    "Final order totals in EGP.",
		Buckets: prometheus.ExponentialBuckets(50, 2, 10),
	})
	reg.MustRegister(created, conflicts, value)
	return &OrderMetrics{created: created, stockConflicts: conflicts, value: value}
}

// ObserveCreated counts a committed order and its total.
func (m *OrderMetrics) ObserveCreated(total decimal.Decimal) {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
	m.value.Observe(total.InexactFloat64())
}

func (m *OrderMetrics) IncStockConflict() {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrderMetrics は注文まわりのメトリクス。
// nil のままでも各メソッドは何もしない。
type OrderMetrics struct {
	OrdersPlacedTotal      prometheus.Counter
	OrdersPlacedAmount     prometheus.Counter
	OrderConflictsTotal    *prometheus.CounterVec
	OrderTransitionsTotal  *prometheus.CounterVec
	BookStatusChangesTotal *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	f := promauto.With(reg)
	return &OrderMetrics{
		OrdersPlacedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "bookmarket_orders_placed_total",
			Help: "Orders created successfully",
		}),
		OrdersPlacedAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "bookmarket_orders_placed_amount_total",
			Help: "Sum of totals of created orders",
		}),
		OrderConflictsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookmarket_order_conflicts_total",
			Help: "Rejected order operations by reason",
		}, []string{"reason"}),
		OrderTransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookmarket_order_transitions_total",
			Help: "Order status transitions",
		}, []string{"to"}),
		BookStatusChangesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookmarket_book_status_changes_total",
			Help: "Book status writes",
		}, []string{"to"}),
	}
}

func (m *OrderMetrics) ObservePlaced(amount float64) {
	if m == nil {
		return
	}
	m.OrdersPlacedTotal.Inc()
	m.OrdersPlacedAmount.Add(amount)
}

func (m *OrderMetrics) ObserveConflict(reason string) {
	if m == nil {
		return
	}
	m.OrderConflictsTotal.WithLabelValues(reason).Inc()
}

func (m *OrderMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.OrderTransitionsTotal.WithLabelValues(to).Inc()
}

func (m *OrderMetrics) ObserveBookStatus(to string) {
	if m == nil {
		return
	}
	m.BookStatusChangesTotal.WithLabelValues(to).Inc()
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOrderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.ObservePlaced(1500.5)
	m.ObservePlaced(100)
	m.ObserveConflict("book_unavailable")
	m.ObserveTransition("cancelled")
	m.ObserveTransition("cancelled")
	m.ObserveBookStatus("available")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersPlacedTotal))
	assert.Equal(t, 1600.5, testutil.ToFloat64(m.OrdersPlacedAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderConflictsTotal.WithLabelValues("book_unavailable")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrderTransitionsTotal.WithLabelValues("cancelled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookStatusChangesTotal.WithLabelValues("available")))
}

func TestOrderMetrics_NilSafe(t *testing.T) {
	var m *OrderMetrics
	assert.NotPanics(t, func() {
		m.ObservePlaced(1)
		m.ObserveConflict("x")
		m.ObserveTransition("paid")
		m.ObserveBookStatus("sold")
	})
}

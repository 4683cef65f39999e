// Package metrics exposes Prometheus observability primitives for the
// settlement engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ordersCreated    *prometheus.CounterVec
	ordersCancelled  prometheus.Counter
	orderTransitions *prometheus.CounterVec
	paymentsRecorded *prometheus.CounterVec
	invoiceAmount    prometheus.Histogram
	stockRejections  *prometheus.CounterVec
	numberingRetries prometheus.Counter
	notifications    *prometheus.CounterVec
}

// New registers and returns Prometheus metrics for the engine.
func New() *Metrics {
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dukaan_orders_created_total",
		Help: "Counts created orders by status.",
	}, []string{"status"})

	ordersCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dukaan_orders_cancelled_total",
		Help: "Counts cancelled orders.",
	})

	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dukaan_order_transitions_total",
		Help: "Counts order status transitions by target status.",
	}, []string{"to"})

	paymentsRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dukaan_payments_recorded_total",
		Help: "Counts recorded invoice payments by method.",
	}, []string{"method"})

	invoiceAmount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dukaan_invoice_amount_minor",
		Help:    "Invoice totals in minor currency units.",
		Buckets: prometheus.ExponentialBuckets(1000, 10, 7),
	})

	stockRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dukaan_stock_rejections_total",
		Help: "Counts reservations rejected for insufficient stock, by SKU.",
	}, []string{"sku"})

	numberingRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dukaan_numbering_retries_total",
		Help: "Counts retried document number allocations.",
	})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dukaan_notifications_total",
		Help: "Counts dispatched notifications by kind and outcome.",
	}, []string{"kind", "status"})

	prometheus.MustRegister(
		ordersCreated,
		ordersCancelled,
		orderTransitions,
		paymentsRecorded,
		invoiceAmount,
		stockRejections,
		numberingRetries,
		notifications,
	)

	return &Metrics{
		ordersCreated:    ordersCreated,
		ordersCancelled:  ordersCancelled,
		orderTransitions: orderTransitions,
		paymentsRecorded: paymentsRecorded,
		invoiceAmount:    invoiceAmount,
		stockRejections:  stockRejections,
		numberingRetries: numberingRetries,
		notifications:    notifications,
	}
}

func (m *Metrics) RecordOrderCreated(status string) {
	m.ordersCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
}

func (m *Metrics) RecordOrderTransition(to string) {
	m.orderTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) RecordPayment(method string, invoiceTotal int64) {
	m.paymentsRecorded.WithLabelValues(method).Inc()
	m.invoiceAmount.Observe(float64(invoiceTotal))
}

func (m *Metrics) RecordStockRejection(sku string) {
	m.stockRejections.WithLabelValues(sku).Inc()
}

func (m *Metrics) RecordNumberingRetry() {
	m.numberingRetries.Inc()
}

func (m *Metrics) RecordNotification(kind, status string) {
	m.notifications.WithLabelValues(kind, status).Inc()
}

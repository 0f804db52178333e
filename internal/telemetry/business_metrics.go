// Package telemetry holds Prometheus instrumentation for the checkout core.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics counts checkout outcomes. HTTP-level metrics live in the
// middleware package; these track what the business cares about.
type BusinessMetrics struct {
	OrdersPlaced     prometheus.Counter
	OrdersFailed     *prometheus.CounterVec
	SoldOutConflicts prometheus.Counter
	CouponOutcomes   *prometheus.CounterVec
	DiscountCents    prometheus.Counter
	ReturnsRequested prometheus.Counter
	RefundsIssued    prometheus.Counter
	RefundCents      prometheus.Counter
}

// NewBusinessMetrics registers the business counters with reg.
func NewBusinessMetrics(reg prometheus.Registerer, namespace string) *BusinessMetrics {
	factory := promauto.With(reg)

	return &BusinessMetrics{
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders successfully placed.",
		}),
		OrdersFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_failed_total",
			Help:      "Checkout attempts that failed, by error code.",
		}, []string{"code"}),
		SoldOutConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sold_out_conflicts_total",
			Help:      "Checkouts rejected because stock ran out inside the transaction.",
		}),
		CouponOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_validations_total",
			Help:      "Coupon validation outcomes, by result code.",
		}, []string{"result"}),
		DiscountCents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_cents_total",
			Help:      "Total discount granted on placed orders, in minor units.",
		}),
		ReturnsRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_requested_total",
			Help:      "Return requests created.",
		}),
		RefundsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_issued_total",
			Help:      "Refunds issued through the payment gateway.",
		}),
		RefundCents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refund_cents_total",
			Help:      "Total refunded amount, in minor units.",
		}),
	}
}

// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request latency by method and route template.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	CheckoutOrders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "checkout", Name: "orders_total",
		Help: "Checkout attempts by flow (user, guest) and outcome.",
	}, []string{"flow", "outcome"})

	CheckoutDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "checkout", Name: "duration_seconds",
		Help:    "Time spent creating an order, including the database transaction.",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})

	NotificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "checkout", Name: "notification_failures_total",
		Help: "Order-created notifications that failed after commit.",
	})

	PaymentInitializations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "payments", Name: "initializations_total",
		Help: "Payment gateway initialisation calls by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		CheckoutOrders,
		CheckoutDuration,
		NotificationFailures,
		PaymentInitializations,
	)
}

func ObserveCheckout(flow, outcome string, started time.Time) {
	CheckoutOrders.WithLabelValues(flow, outcome).Inc()
	CheckoutDuration.WithLabelValues(flow).Observe(time.Since(started).Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}

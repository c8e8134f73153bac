package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prisonmarket"

// Recorder owns the service's Prometheus collectors. A nil Recorder is a no-op.
type Recorder struct {
	registry        *prometheus.Registry
	gatewayRequests *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	ordersPlaced    *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// New registers collectors on a private registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "requests_total",
			Help: "Payment gateway calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "request_duration_seconds",
			Help:    "Payment gateway call latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"operation"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders", Name: "placements_total",
			Help: "Order placement attempts by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "notifications", Name: "sent_total",
			Help: "New order notifications by outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(
		r.gatewayRequests,
		r.gatewayDuration,
		r.ordersPlaced,
		r.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveGateway records one gateway round-trip.
func (r *Recorder) ObserveGateway(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.gatewayRequests.WithLabelValues(operation, outcome).Inc()
	r.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// OrderPlaced counts a placement attempt.
func (r *Recorder) OrderPlaced(outcome string) {
	if r == nil {
		return
	}
	r.ordersPlaced.WithLabelValues(outcome).Inc()
}

// Notification counts a relay delivery attempt.
func (r *Recorder) Notification(outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GatewayRequests returns the gateway call counter.
func (r *Recorder) GatewayRequests() *prometheus.CounterVec { return r.gatewayRequests }

// Placements returns the order placement counter.
func (r *Recorder) Placements() *prometheus.CounterVec { return r.ordersPlaced }

// Notifications returns the notification delivery counter.
func (r *Recorder) Notifications() *prometheus.CounterVec { return r.notifications }

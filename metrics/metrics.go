package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	BookingsCreated   prometheus.Counter
	BookingsCancelled prometheus.Counter
	TokensIssued      prometheus.Counter
	AuthFailures      *prometheus.CounterVec
	StoreErrors       *prometheus.CounterVec
	EventPublishFails prometheus.Counter
}

// New registers every collector on a fresh registry so tests and multiple
// app instances do not collide on the global one.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanco_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cleanco_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleanco_bookings_created_total",
			Help: "Total number of bookings created",
		}),

		BookingsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleanco_bookings_cancelled_total",
			Help: "Total number of bookings removed",
		}),

		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleanco_access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		}),

		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanco_auth_failures_total",
			Help: "Rejected authentication attempts by reason",
		}, []string{"reason"}),

		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanco_store_errors_total",
			Help: "Store failures by operation",
		}, []string{"operation"}),

		EventPublishFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleanco_event_publish_failures_total",
			Help: "Booking events that could not be published",
		}),
	}
}

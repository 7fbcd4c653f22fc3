package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	MessagesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_created_total",
		Help: "Messages posted",
	})

	MessagesDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_deleted_total",
		Help: "Messages deleted by their owner or a moderator",
	})

	Signups = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Accounts created",
	})

	// AuthorizationDenied counts refused requests by reason.
	AuthorizationDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warbler_authorization_denied_total",
			Help: "Requests refused by an authorization check",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal,
		MessagesCreated, MessagesDeleted, Signups, AuthorizationDenied)
}

// RecordRequest records duration and count for an HTTP request.
// path should be a route template so label cardinality stays bounded.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

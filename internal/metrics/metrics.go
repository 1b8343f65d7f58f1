package metrics

import (
	"regexp"
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

	// LifecycleOps counts lifecycle mutations by entity type and action.
	LifecycleOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_operations_total",
			Help: "Total lifecycle mutations by entity type and action",
		},
		[]string{"entity", "action"},
	)

	// Notifications counts dispatcher outcomes (queued, dropped, sent, failed).
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification dispatcher outcomes",
		},
		[]string{"status"},
	)
)

var numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal, LifecycleOps, Notifications)
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/v1/labs/123 -> /api/v1/labs/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncLifecycleOp counts one lifecycle mutation.
func IncLifecycleOp(entity, action string) {
	LifecycleOps.WithLabelValues(entity, action).Inc()
}

// IncNotifications counts one dispatcher outcome.
func IncNotifications(status string) {
	Notifications.WithLabelValues(status).Inc()
}

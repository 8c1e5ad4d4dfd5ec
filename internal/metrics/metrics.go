package metrics

import (
	"regexp"
	"strconv"
	"sync"

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

	// SchedulesCreatedTotal counts schedule create attempts by result (created, conflict, error).
	SchedulesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_schedules_created_total",
			Help: "Total number of schedule create attempts by result",
		},
		[]string{"result"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	accountPathSegment = regexp.MustCompile(`^/accounts/[^/]+`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, SchedulesCreatedTotal)
	})
}

// NormalizePath reduces cardinality by replacing account names and numeric ids.
// E.g. /accounts/ops/schedules/12 -> /accounts/{account}/schedules/{id}.
func NormalizePath(path string) string {
	path = accountPathSegment.ReplaceAllString(path, "/accounts/{account}")
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncSchedulesCreated increments the create counter for result.
func IncSchedulesCreated(result string) {
	SchedulesCreatedTotal.WithLabelValues(result).Inc()
}

package middleware

import (
	"net/http"
	"time"

	"github.com/crucial707/automation-schedules/internal/metrics"
)

// Prometheus records duration and count for every request except /metrics scrapes.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrap, r)
		metrics.RecordRequest(r.Method, r.URL.Path, wrap.status, time.Since(start).Seconds())
	})
}

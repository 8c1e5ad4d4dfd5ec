package middleware

import (
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Recoverer recovers from panics, logs the stack with request ID, and returns
// a 500 JSON response.
func Recoverer(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(logrus.Fields{
						"request_id": chimw.GetReqID(r.Context()),
						"method":     r.Method,
						"path":       r.URL.Path,
						"panic":      rec,
						"stack":      string(debug.Stack()),
					}).Error("panic recovered")
					jsonError(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

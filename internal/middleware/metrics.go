package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/learnhub/backend/internal/metrics"
)

// Metrics records request counts and latency per matched route. It must wrap
// the ServeMux directly so that the mux-assigned Request.Pattern is visible
// after the call.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w}

			next.ServeHTTP(wrapped, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			status := strconv.Itoa(wrapped.Status())

			m.HTTPRequests.WithLabelValues(route, r.Method, status).Inc()
			m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			if wrapped.Status() >= http.StatusBadRequest {
				m.HTTPErrors.WithLabelValues(route, r.Method, status).Inc()
			}
		})
	}
}

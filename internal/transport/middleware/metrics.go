package middleware

import (
	"net/http"
	"time"

	"github.com/heartmarshall/qareview/internal/observability/metrics"
)

// Metrics records request counts and latencies by route pattern. It must
// wrap the ServeMux directly so the matched pattern is visible after the
// request is served.
func Metrics(m *metrics.HTTPMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.RecordRequest(r.Method, route, sw.status, time.Since(start))
		})
	}
}

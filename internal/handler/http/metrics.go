package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockpulse/internal/handler/http/pathutil"
	"stockpulse/internal/observability/metrics"
)

// MetricsMiddleware records request count, latency and in-flight requests.
// Paths are normalized to route templates to keep label cardinality bounded.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		wrapped := record(w)
		next.ServeHTTP(wrapped, r)

		path := pathutil.NormalizePath(r.URL.Path)
		metrics.RecordHTTPRequest(r.Method, path, wrapped.status, time.Since(start))
		metrics.HTTPResponseSize.WithLabelValues(r.Method, path).Observe(float64(wrapped.bytes))
	})
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

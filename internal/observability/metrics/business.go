package metrics

import (
	"strconv"
	"time"
)

// RecordFeedFetch records the outcome of one source fetch.
// Status should be "success", "failure" or "breaker_open".
func RecordFeedFetch(source, status string, duration time.Duration, items int) {
	FeedFetchTotal.WithLabelValues(source, status).Inc()
	FeedFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if items > 0 {
		FeedItemsTotal.WithLabelValues(source).Add(float64(items))
	}
}

// RecordAggregation records an uncached aggregation run.
// Outcome is "ok", "empty" or "unavailable".
func RecordAggregation(outcome string, duration time.Duration) {
	AggregationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordCacheEvent increments the cache event counter.
func RecordCacheEvent(cache, event string) {
	CacheEventsTotal.WithLabelValues(cache, event).Inc()
}

// RecordVerdict counts a verdict returned to a caller.
func RecordVerdict(verdict string) {
	VerdictsTotal.WithLabelValues(verdict).Inc()
}

// RecordDigest records whether an AI digest succeeded or fell back to headlines.
func RecordDigest(success bool) {
	status := "success"
	if !success {
		status = "fallback"
	}
	DigestTotal.WithLabelValues(status).Inc()
}

// RecordWatchlistOperation records a watchlist add/remove/list.
func RecordWatchlistOperation(operation string, ok bool) {
	WatchlistOperationsTotal.WithLabelValues(operation, strconv.FormatBool(ok)).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordBreakerState sets the state gauge of a circuit breaker.
func RecordBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight is the number of requests currently being served.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)
)

// News pipeline metrics
var (
	// FeedFetchTotal counts source fetches by outcome (success, failure, breaker_open).
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_feed_fetch_total",
			Help: "Total number of feed source fetches",
		},
		[]string{"source", "status"},
	)

	// FeedFetchDuration measures a single source fetch including parsing.
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockpulse_feed_fetch_duration_seconds",
			Help:    "Feed source fetch duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"source"},
	)

	// FeedItemsTotal counts raw items returned by sources before filtering.
	FeedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_feed_items_total",
			Help: "Total number of raw items returned by feed sources",
		},
		[]string{"source"},
	)

	// AggregationDuration measures an uncached aggregation for one symbol.
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockpulse_aggregation_duration_seconds",
			Help:    "News aggregation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// CacheEventsTotal counts cache lookups by event (hit, miss, shared, stale, negative_hit, negative_store).
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_cache_events_total",
			Help: "Total number of result cache events",
		},
		[]string{"cache", "event"},
	)

	// VerdictsTotal counts per-symbol verdicts handed to callers.
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_verdicts_total",
			Help: "Total number of sentiment verdicts produced",
		},
		[]string{"verdict"},
	)

	// DigestTotal counts AI digest attempts by status (success, fallback).
	DigestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_digest_total",
			Help: "Total number of headline digest attempts",
		},
		[]string{"status"},
	)

	// WatchlistOperationsTotal counts watchlist mutations by operation and result.
	WatchlistOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_watchlist_operations_total",
			Help: "Total number of watchlist operations",
		},
		[]string{"operation", "result"},
	)

	// CircuitBreakerState is the state of each breaker: 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stockpulse_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

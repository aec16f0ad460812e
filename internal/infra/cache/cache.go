// Package cache provides an in-process TTL cache for fetched result sets.
// Concurrent misses for the same key collapse into a single upstream fetch.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockpulse/internal/observability/metrics"
)

// Config controls failure handling.
type Config struct {
	// Name labels log lines and metrics.
	Name string

	// FailureTTL is how long a failed fetch is remembered before the next attempt.
	FailureTTL time.Duration

	// GracePeriod extends the life of the last good payload when a refresh fails.
	// A payload fetched at t with ttl d may be served until t+d+GracePeriod.
	GracePeriod time.Duration
}

// DefaultConfig returns the settings used by the news aggregator.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		FailureTTL:  2 * time.Minute,
		GracePeriod: 2 * time.Hour,
	}
}

// Option customizes a Cache.
type Option func(*settings)

type settings struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock injects the time source. Tests use it to step past TTLs.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

type entry[T any] struct {
	payload  []T
	err      error
	origin   time.Time // when payload was fetched
	storedAt time.Time
	ttl      time.Duration
}

func (e *entry[T]) fresh(now time.Time) bool {
	return now.Sub(e.storedAt) < e.ttl
}

// Cache maps keys to immutable result slices. Entries are replaced whole, never merged,
// and are not evicted beyond TTL expiry, so memory grows with the number of distinct keys.
type Cache[T any] struct {
	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry[T]
	group   singleflight.Group
}

// New creates an empty Cache.
func New[T any](cfg Config, opts ...Option) *Cache[T] {
	s := settings{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return &Cache[T]{
		cfg:     cfg,
		now:     s.now,
		logger:  s.logger,
		entries: make(map[string]*entry[T]),
	}
}

// GetOrFetch returns the payload stored under key, calling fetch when the entry is
// missing or older than ttl.
//
// At most one fetch per key is in flight; concurrent callers wait for it and share
// its result. The fetch runs detached from the caller's cancellation so that one
// impatient caller cannot abort work others are waiting on; the caller itself
// returns ctx.Err() as soon as ctx is done.
//
// On fetch failure the previous payload is served while it is inside the grace period.
// Otherwise the error is cached for FailureTTL and returned.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if e, ok := c.lookup(key); ok && e.fresh(c.now()) {
		if e.err != nil {
			metrics.RecordCacheEvent(c.cfg.Name, "negative_hit")
			return nil, e.err
		}
		metrics.RecordCacheEvent(c.cfg.Name, "hit")
		return e.payload, nil
	}
	metrics.RecordCacheEvent(c.cfg.Name, "miss")

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// A flight that finished just before this one started may have stored a fresh entry.
		if e, ok := c.lookup(key); ok && e.fresh(c.now()) {
			return e, nil
		}
		return c.populate(context.WithoutCancel(ctx), key, ttl, fetch), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.RecordCacheEvent(c.cfg.Name, "shared")
		}
		e := res.Val.(*entry[T])
		if e.err != nil {
			return nil, e.err
		}
		return e.payload, nil
	}
}

// populate runs fetch and stores the outcome according to the failure policy.
func (c *Cache[T]) populate(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) ([]T, error)) *entry[T] {
	payload, err := fetch(ctx)
	now := c.now()

	if err == nil {
		e := &entry[T]{payload: payload, origin: now, storedAt: now, ttl: ttl}
		c.store(key, e)
		return e
	}

	// Cancelled work is never cached.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &entry[T]{err: err}
	}

	if prev, ok := c.lookup(key); ok && prev.err == nil && len(prev.payload) > 0 &&
		now.Sub(prev.origin) < ttl+c.cfg.GracePeriod {
		c.logger.Warn("refresh failed, serving previous payload",
			slog.String("cache", c.cfg.Name),
			slog.String("key", key),
			slog.Duration("age", now.Sub(prev.origin)),
			slog.Any("error", err))
		metrics.RecordCacheEvent(c.cfg.Name, "stale")

		// Hold the old payload for FailureTTL so a failing upstream is not hit on every call.
		e := &entry[T]{payload: prev.payload, origin: prev.origin, storedAt: now, ttl: c.cfg.FailureTTL}
		c.store(key, e)
		return e
	}

	c.logger.Warn("fetch failed, caching failure",
		slog.String("cache", c.cfg.Name),
		slog.String("key", key),
		slog.Duration("failure_ttl", c.cfg.FailureTTL),
		slog.Any("error", err))
	metrics.RecordCacheEvent(c.cfg.Name, "negative_store")

	e := &entry[T]{err: err, storedAt: now, ttl: c.cfg.FailureTTL}
	c.store(key, e)
	return e
}

func (c *Cache[T]) lookup(key string) (*entry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache[T]) store(key string, e *entry[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// Len returns the number of keys held, fresh or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Package circuitbreaker stops calling a news source, LLM provider or the
// database while it keeps failing. Breakers are sony/gobreaker instances whose
// state is logged and exported as stockpulse_circuit_breaker_state.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"stockpulse/internal/observability/metrics"
)

// Config tunes one breaker. It trips once MinRequests calls were seen in the
// current Interval and the failure ratio reaches FailureThreshold, then
// rejects calls for Timeout before letting MaxRequests probes through.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig suits request/response APIs such as the LLM providers.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// LLMConfig is the profile of a digest provider ("claude", "openai").
func LLMConfig(provider string) Config {
	return DefaultConfig(provider + "-api")
}

// FeedSourceConfig is the profile of one news source. An open breaker skips
// the source for as long as a failed lookup stays cached.
func FeedSourceConfig(name string) Config {
	return Config{
		Name:             "feed-" + name,
		MaxRequests:      2,
		Interval:         5 * time.Minute,
		Timeout:          2 * time.Minute,
		FailureThreshold: 0.7,
		MinRequests:      6,
	}
}

// CircuitBreaker is a named gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// New builds a breaker from cfg. Cancelled calls count as successes: the
// caller gave up, the dependency did not fail.
func New(cfg Config) *CircuitBreaker {
	metrics.RecordBreakerState(cfg.Name, int(gobreaker.StateClosed))
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerState(name, int(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})}
}

// Run calls fn through the breaker. While the breaker is open fn is not
// called and the error satisfies IsRejection.
func Run[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string { return cb.breaker.Name() }

// State returns the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

// IsRejection reports whether err came from the breaker refusing the call
// rather than from the protected dependency.
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Package retry repeats an operation with exponential backoff while it fails
// transiently: network timeouts, refused or reset connections, and HTTP 408,
// 429 and 5xx answers. Anything else is returned at once.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config is a backoff schedule. Attempts counts the first call.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Factor    float64
	// Jitter adds up to Jitter*delay of random wait, 0 to 1.
	Jitter float64
}

// LLM is the schedule for digest providers. Calls are billed, so few attempts.
func LLM() Config {
	return Config{Attempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second, Factor: 2, Jitter: 0.1}
}

// DBStartup is the schedule for reaching the database when a process starts.
func DBStartup() Config {
	return Config{Attempts: 5, BaseDelay: 200 * time.Millisecond, MaxDelay: 3 * time.Second, Factor: 2, Jitter: 0.1}
}

// Backoff returns the wait before retry n (1-based), without jitter.
func (c Config) Backoff(n int) time.Duration {
	d := float64(c.BaseDelay)
	for i := 1; i < n; i++ {
		d *= c.Factor
		if c.MaxDelay > 0 && d >= float64(c.MaxDelay) {
			return c.MaxDelay
		}
	}
	return time.Duration(d)
}

func (c Config) wait(n int) time.Duration {
	d := c.Backoff(n)
	j := min(max(c.Jitter, 0), 1)
	if j == 0 || d <= 0 {
		return d
	}
	// #nosec G404 -- jitter does not need cryptographic randomness.
	return d + time.Duration(rand.Float64()*j*float64(d))
}

// Do calls fn until it succeeds, fails permanently, runs out of attempts or
// ctx ends. A zero Config calls fn once.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.Attempts, 1)

	for n := 1; ; n++ {
		v, err := fn()
		switch {
		case err == nil:
			if n > 1 {
				slog.Info("operation succeeded after retry", slog.Int("attempt", n))
			}
			return v, nil
		case !IsRetryable(err):
			return zero, err
		case n == attempts:
			return zero, fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}

		d := cfg.wait(n)
		slog.Warn("operation failed, retrying",
			slog.Int("attempt", n),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", d),
			slog.Any("error", err))

		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}
}

// Run is Do for operations without a result.
func Run(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Do(ctx, cfg, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// IsRetryable reports whether err is transient. Context errors never are:
// the caller has given up.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatus()
		return (code >= 500 && code < 600) || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
	}
	return false
}

// HTTPError is an upstream answer with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string { return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message) }

// HTTPStatus implements StatusCoder.
func (e *HTTPError) HTTPStatus() int { return e.StatusCode }

// Package feed implements news.FeedSource for the supported upstreams:
// RSS/Atom feeds, NewsAPI and Alpha Vantage.
//
// Every source bounds its calls with a timeout and a circuit breaker and never retries;
// the aggregator treats any returned error as that source failing for the call.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/resilience/circuitbreaker"
)

const (
	// DefaultTimeout bounds one source call.
	DefaultTimeout = 8 * time.Second

	userAgent = "StockPulseBot/1.0"

	// maxBodyBytes caps JSON responses read from REST sources.
	maxBodyBytes = 4 << 20
)

// QueryFunc turns a symbol into the search term sent upstream.
type QueryFunc func(entity.Symbol) string

// BareQuery searches for the bare ticker ("TCS.NS" -> "tcs").
func BareQuery(s entity.Symbol) string { return s.Bare() }

// StatusError is returned for a non-2xx upstream response.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Source, e.StatusCode)
}

// HTTPStatus implements retry.StatusCoder.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Option configures a source.
type Option func(*base)

// WithTimeout sets the per-call timeout (DefaultTimeout when d <= 0).
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		if c != nil {
			b.client = c
		}
	}
}

// WithQuery sets how a symbol becomes a search term.
func WithQuery(q QueryFunc) Option {
	return func(b *base) {
		if q != nil {
			b.query = q
		}
	}
}

// WithEndpoint overrides the API base URL of a REST source.
func WithEndpoint(endpoint string) Option {
	return func(b *base) {
		if endpoint != "" {
			b.endpoint = endpoint
		}
	}
}

// WithRateLimit allows perMinute calls per minute with the given burst.
func WithRateLimit(perMinute float64, burst int) Option {
	return func(b *base) {
		if perMinute > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perMinute/60), max(burst, 1))
		}
	}
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(b *base) { b.breaker = circuitbreaker.New(cfg) }
}

// base carries what every source shares: identity, transport and guards.
type base struct {
	name     string
	endpoint string
	client   *http.Client
	timeout  time.Duration
	query    QueryFunc
	limiter  *rate.Limiter
	breaker  *circuitbreaker.CircuitBreaker
}

func newBase(name, endpoint string, opts []Option) base {
	b := base{
		name:     name,
		endpoint: endpoint,
		client:   &http.Client{},
		timeout:  DefaultTimeout,
		query:    BareQuery,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.breaker == nil {
		b.breaker = circuitbreaker.New(circuitbreaker.FeedSourceConfig(name))
	}
	return b
}

// Name returns the configured source name.
func (b *base) Name() string { return b.name }

// guard runs fn under the timeout, the rate limiter and the circuit breaker.
func (b *base) guard(ctx context.Context, symbol entity.Symbol, fn func(context.Context) ([]entity.NewsItem, error)) ([]entity.NewsItem, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit: %w", b.name, err)
		}
	}

	items, err := circuitbreaker.Run(b.breaker, func() ([]entity.NewsItem, error) {
		return fn(ctx)
	})
	if err != nil {
		if circuitbreaker.IsRejection(err) {
			slog.Warn("news source circuit open, call rejected",
				slog.String("source", b.name),
				slog.String("symbol", symbol.String()),
				slog.String("state", b.breaker.State().String()))
		}
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	return items, nil
}

// getJSON issues a GET and decodes a JSON body into v.
// Transport errors are stripped of the URL, which may carry an API key.
func (b *base) getJSON(ctx context.Context, rawURL string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("%s %s: %w", urlErr.Op, req.URL.Host, urlErr.Err)
		}
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{Source: b.name, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/observability/metrics"
	"stockpulse/internal/observability/tracing"
	"stockpulse/internal/usecase/relevance"
	"stockpulse/internal/usecase/sentiment"
)

// Aggregator gathers, filters, scores and caches headlines per symbol.
// It is safe for concurrent use.
type Aggregator struct {
	sources []FeedSource
	filter  *relevance.Filter
	scorer  *sentiment.Scorer
	cache   ResultCache
	cfg     Config
	logger  *slog.Logger

	mu       sync.Mutex
	failures map[string]int64
}

// NewAggregator creates an Aggregator. Sources are queried in the given order and that
// order is kept in the results. Zero Config fields take their defaults.
func NewAggregator(sources []FeedSource, filter *relevance.Filter, scorer *sentiment.Scorer, cache ResultCache, cfg Config) *Aggregator {
	if filter == nil {
		filter = relevance.NewFilter(nil)
	}
	if scorer == nil {
		scorer = sentiment.NewScorer(nil)
	}
	return &Aggregator{
		sources:  append([]FeedSource(nil), sources...),
		filter:   filter,
		scorer:   scorer,
		cache:    cache,
		cfg:      cfg.withDefaults(),
		logger:   slog.Default(),
		failures: make(map[string]int64),
	}
}

// WithLogger replaces the logger and returns the aggregator.
func (a *Aggregator) WithLogger(logger *slog.Logger) *Aggregator {
	a.logger = logger
	return a
}

// Config returns the effective configuration.
func (a *Aggregator) Config() Config { return a.cfg }

// CacheKey is the cache key for symbol.
func CacheKey(symbol entity.Symbol) string {
	return "news:" + symbol.String()
}

// NewsFor returns up to topK relevant, scored articles for symbol in discovery order.
//
// topK <= 0 selects the configured default; values above MaxArticles are clamped.
// An empty slice with a nil error means the sources answered but nothing matched.
// When every source failed the error matches ErrAllSourcesUnavailable.
func (a *Aggregator) NewsFor(ctx context.Context, symbol entity.Symbol, topK int) ([]entity.ScoredNewsItem, error) {
	canonical, err := entity.ParseSymbol(symbol.String())
	if err != nil {
		return nil, err
	}
	if len(a.sources) == 0 {
		return nil, ErrNoSources
	}

	ctx, span := tracing.StartSymbolSpan(ctx, "news.NewsFor", canonical.String())
	defer span.End()

	start := time.Now()
	items, err := a.cache.GetOrFetch(ctx, CacheKey(canonical), a.cfg.CacheTTL,
		func(fctx context.Context) ([]entity.ScoredNewsItem, error) {
			return a.collect(fctx, canonical, func(item entity.NewsItem) bool {
				return a.filter.Matches(item, canonical)
			})
		})
	metrics.RecordAggregation(outcome(items, err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The cached slice is shared across callers; hand out a copy.
	items = slices.Clone(items[:min(a.effectiveTopK(topK), len(items))])
	span.SetAttributes(attribute.Int("news.items", len(items)))
	return items, nil
}

func (a *Aggregator) effectiveTopK(topK int) int {
	if topK <= 0 {
		return a.cfg.DefaultTopK
	}
	return min(topK, a.cfg.MaxArticles)
}

// collect is the cache fetcher: query every source for symbol, then keep the items
// relevant reports true for, dedupe, score and cap.
func (a *Aggregator) collect(ctx context.Context, symbol entity.Symbol, relevant func(entity.NewsItem) bool) ([]entity.ScoredNewsItem, error) {
	results := make([][]entity.NewsItem, len(a.sources))
	errs := make([]error, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			results[i], errs[i] = a.fetchOne(ctx, src, symbol)
			return nil
		})
	}
	_ = g.Wait()

	var (
		failures []SourceError
		gathered []entity.NewsItem
	)
	for i, src := range a.sources {
		if errs[i] != nil {
			failures = append(failures, SourceError{Source: src.Name(), Err: errs[i]})
			continue
		}
		gathered = append(gathered, results[i]...)
	}
	if len(failures) == len(a.sources) {
		return nil, &UnavailableError{Symbol: symbol, Failures: failures}
	}

	seen := make(map[string]struct{}, len(gathered))
	scored := make([]entity.ScoredNewsItem, 0, a.cfg.MaxArticles)
	for _, item := range gathered {
		if len(scored) == a.cfg.MaxArticles {
			break
		}
		if !relevant(item) {
			continue
		}
		key := dedupeKey(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		scored = append(scored, a.scorer.ScoreItem(item))
	}

	a.logger.Info("news collected",
		slog.String("symbol", symbol.String()),
		slog.Int("gathered", len(gathered)),
		slog.Int("kept", len(scored)),
		slog.Int("failed_sources", len(failures)))
	return scored, nil
}

// fetchOne calls a single source under the per-source timeout. Panics count as failures.
func (a *Aggregator) fetchOne(ctx context.Context, src FeedSource, symbol entity.Symbol) (items []entity.NewsItem, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("source panicked: %v", r)
		}
		status := "success"
		if err != nil {
			status = "failure"
			if errors.Is(err, context.DeadlineExceeded) {
				status = "timeout"
			}
			a.recordFailure(src.Name())
			a.logger.Warn("news source failed",
				slog.String("source", src.Name()),
				slog.String("symbol", symbol.String()),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err))
		}
		metrics.RecordFeedFetch(src.Name(), status, time.Since(start), len(items))
	}()

	return src.Fetch(ctx, symbol)
}

func (a *Aggregator) recordFailure(source string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[source]++
}

// SourceFailures returns the number of failed calls per source since start.
func (a *Aggregator) SourceFailures() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int64, len(a.failures))
	for k, v := range a.failures {
		out[k] = v
	}
	return out
}

func dedupeKey(item entity.NewsItem) string {
	if item.Link != "" {
		return item.Link
	}
	return "title:" + item.Title
}

func outcome(items []entity.ScoredNewsItem, err error) string {
	switch {
	case errors.Is(err, ErrAllSourcesUnavailable):
		return "unavailable"
	case err != nil:
		return "error"
	case len(items) == 0:
		return "empty"
	default:
		return "ok"
	}
}

package news

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/observability/metrics"
	"stockpulse/internal/observability/tracing"
	"stockpulse/internal/usecase/relevance"
	"stockpulse/internal/usecase/sentiment"
)

// SectorTopK is how many sector headlines accompany a symbol's news.
const SectorTopK = 2

// ErrEmptySector is returned for a blank sector name.
var ErrEmptySector = errors.New("sector name is required")

// SectorReport is the outcome for one industry sector.
type SectorReport struct {
	Sector  string
	Items   []entity.ScoredNewsItem
	Summary entity.Summary
	Err     error
}

// SectorCacheKey is the cache key for sector. Names differing only in case or
// spacing share a key.
func SectorCacheKey(sector string) string {
	return "sector:" + strings.ToLower(normalizeSector(sector))
}

func normalizeSector(sector string) string {
	return strings.Join(strings.Fields(sector), " ")
}

// SectorNews returns up to topK scored headlines that mention sector, searched
// for across the same sources as symbols and cached under SectorCacheKey.
func (a *Aggregator) SectorNews(ctx context.Context, sector string, topK int) ([]entity.ScoredNewsItem, error) {
	name := normalizeSector(sector)
	if name == "" {
		return nil, ErrEmptySector
	}
	if len(a.sources) == 0 {
		return nil, ErrNoSources
	}

	ctx, span := tracing.StartSymbolSpan(ctx, "news.SectorNews", name)
	defer span.End()

	start := time.Now()
	items, err := a.cache.GetOrFetch(ctx, SectorCacheKey(name), a.cfg.CacheTTL,
		func(fctx context.Context) ([]entity.ScoredNewsItem, error) {
			return a.collect(fctx, entity.Symbol(name), func(item entity.NewsItem) bool {
				return relevance.MentionsTerm(item, name)
			})
		})
	metrics.RecordAggregation(outcome(items, err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	items = slices.Clone(items[:min(a.effectiveTopK(topK), len(items))])
	span.SetAttributes(attribute.Int("news.items", len(items)))
	return items, nil
}

// SummarizeSector fetches sector headlines and folds them into a verdict.
func (a *Aggregator) SummarizeSector(ctx context.Context, sector string, topK int) (SectorReport, error) {
	name := normalizeSector(sector)
	items, err := a.SectorNews(ctx, name, topK)
	if err != nil {
		return SectorReport{Sector: name, Err: err}, err
	}
	return SectorReport{Sector: name, Items: items, Summary: sentiment.Summarize(items)}, nil
}

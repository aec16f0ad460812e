package news

import (
	"context"
	"time"

	"stockpulse/internal/domain/entity"
)

// FeedSource is one external supplier of headlines.
//
// Fetch returns the items the source currently has for symbol, in the source's own order.
// A non-nil error means the source failed for this call; the aggregator logs and counts it
// and carries on with the other sources. Implementations must honour ctx and must not retry.
type FeedSource interface {
	Name() string
	Fetch(ctx context.Context, symbol entity.Symbol) ([]entity.NewsItem, error)
}

// ResultCache stores scored result sets per key. *cache.Cache[entity.ScoredNewsItem] implements it.
type ResultCache interface {
	GetOrFetch(ctx context.Context, key string, ttl time.Duration,
		fetch func(context.Context) ([]entity.ScoredNewsItem, error)) ([]entity.ScoredNewsItem, error)
}

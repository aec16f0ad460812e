package news_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/infra/cache"
	"stockpulse/internal/usecase/news"
	"stockpulse/internal/usecase/relevance"
	"stockpulse/internal/usecase/sentiment"
)

/* ───────── fakes ───────── */

type fakeSource struct {
	name  string
	items []entity.NewsItem
	err   error
	fn    func(ctx context.Context, symbol entity.Symbol) ([]entity.NewsItem, error)
	calls atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, symbol entity.Symbol) ([]entity.NewsItem, error) {
	f.calls.Add(1)
	if f.fn != nil {
		return f.fn(ctx, symbol)
	}
	return f.items, f.err
}

func headline(title, link string) entity.NewsItem {
	return entity.NewsItem{Title: title, Link: link, Source: "fake"}
}

func newAggregator(t *testing.T, cfg news.Config, sources ...news.FeedSource) *news.Aggregator {
	t.Helper()
	c := cache.New[entity.ScoredNewsItem](cache.DefaultConfig("news-test"))
	filter := relevance.NewFilter(map[entity.Symbol][]string{
		"TCS.NS": {"Tata Consultancy"},
	})
	return news.NewAggregator(sources, filter, sentiment.NewScorer(nil), c, cfg)
}

/* ───────── NewsFor ───────── */

func TestNewsFor_AllSourcesFail(t *testing.T) {
	a := &fakeSource{name: "a", err: errors.New("connection refused")}
	b := &fakeSource{name: "b", err: context.DeadlineExceeded}
	agg := newAggregator(t, news.Config{}, a, b)

	items, err := agg.NewsFor(context.Background(), "TCS.NS", 5)

	require.Error(t, err)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, news.ErrAllSourcesUnavailable)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)

	var unavailable *news.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Len(t, unavailable.Failures, 2)
	assert.Equal(t, "a", unavailable.Failures[0].Source)
	assert.Equal(t, "b", unavailable.Failures[1].Source)
	assert.Equal(t, map[string]int64{"a": 1, "b": 1}, agg.SourceFailures())
}

func TestNewsFor_TopKKeepsDiscoveryOrder(t *testing.T) {
	var items []entity.NewsItem
	for i := range 10 {
		items = append(items, headline(fmt.Sprintf("TCS headline %d", i), fmt.Sprintf("https://example.com/%d", i)))
	}
	src := &fakeSource{name: "rss", items: items}
	agg := newAggregator(t, news.Config{MaxArticles: 10}, src)

	got, err := agg.NewsFor(context.Background(), "TCS.NS", 3)

	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, it := range got {
		assert.Equal(t, fmt.Sprintf("TCS headline %d", i), it.Title)
	}
}

func TestNewsFor_TopKDefaultsAndClamp(t *testing.T) {
	var items []entity.NewsItem
	for i := range 10 {
		items = append(items, headline(fmt.Sprintf("TCS item %d", i), fmt.Sprintf("https://example.com/%d", i)))
	}
	agg := newAggregator(t, news.Config{MaxArticles: 6, DefaultTopK: 5}, &fakeSource{name: "rss", items: items})

	tests := []struct {
		name string
		topK int
		want int
	}{
		{"zero uses default", 0, 5},
		{"negative uses default", -1, 5},
		{"within cap", 2, 2},
		{"above cap clamps", 50, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agg.NewsFor(context.Background(), "TCS.NS", tt.topK)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestNewsFor_SourceOrderPreservedAcrossConcurrentSources(t *testing.T) {
	slow := &fakeSource{name: "slow", fn: func(ctx context.Context, _ entity.Symbol) ([]entity.NewsItem, error) {
		time.Sleep(30 * time.Millisecond)
		return []entity.NewsItem{headline("TCS from slow", "https://slow/1")}, nil
	}}
	fast := &fakeSource{name: "fast", items: []entity.NewsItem{headline("TCS from fast", "https://fast/1")}}
	agg := newAggregator(t, news.Config{}, slow, fast)

	got, err := agg.NewsFor(context.Background(), "TCS.NS", 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TCS from slow", got[0].Title)
	assert.Equal(t, "TCS from fast", got[1].Title)
}

func TestNewsFor_PartialFailureIsAbsorbed(t *testing.T) {
	bad := &fakeSource{name: "bad", err: errors.New("502 bad gateway")}
	good := &fakeSource{name: "good", items: []entity.NewsItem{headline("TCS profit surges 10%", "https://good/1")}}
	agg := newAggregator(t, news.Config{}, bad, good)

	got, err := agg.NewsFor(context.Background(), "TCS.NS", 5)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Score)
	assert.Equal(t, int64(1), agg.SourceFailures()["bad"])
	assert.Zero(t, agg.SourceFailures()["good"])
}

func TestNewsFor_NoRelevantArticlesIsEmptySuccess(t *testing.T) {
	src := &fakeSource{name: "rss", items: []entity.NewsItem{headline("Unrelated company news", "https://x/1")}}
	agg := newAggregator(t, news.Config{}, src)

	got, err := agg.NewsFor(context.Background(), "TCS.NS", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = news.RequireArticles(got, err)
	assert.ErrorIs(t, err, news.ErrNoRelevantArticles)
	assert.NotErrorIs(t, err, news.ErrAllSourcesUnavailable)
}

func TestNewsFor_FiltersByAliasAndDeduplicatesLinks(t *testing.T) {
	src1 := &fakeSource{name: "one", items: []entity.NewsItem{
		headline("Tata Consultancy wins deal", "https://x/deal"),
		headline("Infosys results", "https://x/infy"),
	}}
	src2 := &fakeSource{name: "two", items: []entity.NewsItem{
		headline("Tata Consultancy wins deal (syndicated)", "https://x/deal"),
		headline("TCS shares fall", "https://x/fall"),
	}}
	agg := newAggregator(t, news.Config{}, src1, src2)

	got, err := agg.NewsFor(context.Background(), "TCS.NS", 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://x/deal", got[0].Link)
	assert.Equal(t, "https://x/fall", got[1].Link)
	assert.Equal(t, -1, got[1].Score)
}

func TestNewsFor_CachedWithinTTL(t *testing.T) {
	src := &fakeSource{name: "rss", items: []entity.NewsItem{headline("TCS up", "https://x/1")}}
	agg := newAggregator(t, news.Config{CacheTTL: time.Hour}, src)

	first, err := agg.NewsFor(context.Background(), "tcs.ns", 5)
	require.NoError(t, err)
	second, err := agg.NewsFor(context.Background(), "TCS.NS", 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestNewsFor_CallerCannotCorruptCache(t *testing.T) {
	src := &fakeSource{name: "rss", items: []entity.NewsItem{
		headline("TCS up", "https://x/1"),
		headline("TCS wins order", "https://x/2"),
		headline("TCS hires", "https://x/3"),
	}}
	agg := newAggregator(t, news.Config{CacheTTL: time.Hour}, src)

	first, err := agg.NewsFor(context.Background(), "TCS.NS", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	_ = append(first, entity.ScoredNewsItem{NewsItem: headline("INJECTED", "https://evil/1")})
	first[0].Title = "MUTATED"

	again, err := agg.NewsFor(context.Background(), "TCS.NS", 3)
	require.NoError(t, err)
	require.Len(t, again, 3)
	for _, it := range again {
		assert.NotEqual(t, "INJECTED", it.Title)
		assert.NotEqual(t, "MUTATED", it.Title)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestNewsFor_InvalidSymbolRejectedBeforeFetch(t *testing.T) {
	src := &fakeSource{name: "rss"}
	agg := newAggregator(t, news.Config{}, src)

	_, err := agg.NewsFor(context.Background(), "not a ticker!", 5)

	assert.ErrorIs(t, err, entity.ErrInvalidSymbol)
	assert.Zero(t, src.calls.Load())
}

func TestNewsFor_NoSources(t *testing.T) {
	agg := newAggregator(t, news.Config{})

	_, err := agg.NewsFor(context.Background(), "AAPL", 5)

	assert.ErrorIs(t, err, news.ErrNoSources)
}

func TestNewsFor_SourceTimeoutCountsAsFailure(t *testing.T) {
	hung := &fakeSource{name: "hung", fn: func(ctx context.Context, _ entity.Symbol) ([]entity.NewsItem, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	ok := &fakeSource{name: "ok", items: []entity.NewsItem{headline("TCS steady", "https://x/1")}}
	agg := newAggregator(t, news.Config{SourceTimeout: 20 * time.Millisecond}, hung, ok)

	got, err := agg.NewsFor(context.Background(), "TCS.NS", 5)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), agg.SourceFailures()["hung"])
}

func TestNewsFor_PanickingSourceCountsAsFailure(t *testing.T) {
	boom := &fakeSource{name: "boom", fn: func(context.Context, entity.Symbol) ([]entity.NewsItem, error) {
		panic("parser bug")
	}}
	agg := newAggregator(t, news.Config{}, boom)

	_, err := agg.NewsFor(context.Background(), "TCS.NS", 5)

	assert.ErrorIs(t, err, news.ErrAllSourcesUnavailable)
	assert.Contains(t, err.Error(), "parser bug")
}

/* ───────── Summarize / Report ───────── */

func TestSummarize(t *testing.T) {
	src := &fakeSource{name: "rss", items: []entity.NewsItem{
		headline("TCS profit surges", "https://x/1"),
		headline("TCS shares fall", "https://x/2"),
		headline("TCS holds meeting", "https://x/3"),
	}}
	agg := newAggregator(t, news.Config{}, src)

	rep, err := agg.Summarize(context.Background(), "TCS.NS", 5)

	require.NoError(t, err)
	assert.Equal(t, entity.Summary{Verdict: entity.VerdictBullish, TotalScore: 1, ArticleCount: 3}, rep.Summary)
	assert.Len(t, rep.Items, 3)
}

func TestReport_PerSymbolInRequestOrder(t *testing.T) {
	src := &fakeSource{name: "rss", fn: func(_ context.Context, sym entity.Symbol) ([]entity.NewsItem, error) {
		switch sym {
		case "AAPL":
			return []entity.NewsItem{headline("AAPL shares rally", "https://x/aapl")}, nil
		case "MSFT":
			return nil, errors.New("quota exceeded")
		default:
			return []entity.NewsItem{headline(sym.Bare()+" plunge after probe", "https://x/"+sym.Bare())}, nil
		}
	}}
	agg := newAggregator(t, news.Config{ReportParallelism: 2}, src)

	rep := agg.Report(context.Background(), []entity.Symbol{"AAPL", "MSFT", "INFY.NS"}, 3, time.Second)

	require.Len(t, rep.Symbols, 3)
	assert.Equal(t, entity.Symbol("AAPL"), rep.Symbols[0].Symbol)
	assert.Equal(t, entity.VerdictBullish, rep.Symbols[0].Summary.Verdict)

	assert.Equal(t, entity.Symbol("MSFT"), rep.Symbols[1].Symbol)
	assert.ErrorIs(t, rep.Symbols[1].Err, news.ErrAllSourcesUnavailable)

	assert.Equal(t, entity.Symbol("INFY.NS"), rep.Symbols[2].Symbol)
	assert.Equal(t, entity.VerdictBearish, rep.Symbols[2].Summary.Verdict)
	assert.Equal(t, -2, rep.Symbols[2].Summary.TotalScore)

	assert.Equal(t, 1, rep.Failed())
}

func TestReport_BudgetBoundsTheCall(t *testing.T) {
	src := &fakeSource{name: "slow", fn: func(ctx context.Context, _ entity.Symbol) ([]entity.NewsItem, error) {
		select {
		case <-time.After(2 * time.Second):
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
	agg := newAggregator(t, news.Config{SourceTimeout: 5 * time.Second}, src)

	start := time.Now()
	rep := agg.Report(context.Background(), []entity.Symbol{"AAPL", "MSFT"}, 3, 50*time.Millisecond)

	assert.Less(t, time.Since(start), time.Second)
	for _, s := range rep.Symbols {
		assert.ErrorIs(t, s.Err, context.DeadlineExceeded)
	}
}

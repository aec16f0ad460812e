package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/infra/adapter/persistence/memory"
	newsUC "stockpulse/internal/usecase/news"
	wlUC "stockpulse/internal/usecase/watchlist"
)

type fakeAggregator struct {
	reports map[entity.Symbol]newsUC.SymbolReport
}

func (f *fakeAggregator) Summarize(_ context.Context, sym entity.Symbol, _ int) (newsUC.SymbolReport, error) {
	rep, ok := f.reports[sym]
	if !ok {
		return newsUC.SymbolReport{Symbol: sym, Items: []entity.ScoredNewsItem{}, Summary: entity.Summary{Verdict: entity.VerdictNeutral}}, nil
	}
	return rep, rep.Err
}

func (f *fakeAggregator) Report(ctx context.Context, symbols []entity.Symbol, topK int, _ time.Duration) newsUC.WatchlistReport {
	out := newsUC.WatchlistReport{GeneratedAt: time.Now()}
	for _, s := range symbols {
		rep, _ := f.Summarize(ctx, s, topK)
		out.Symbols = append(out.Symbols, rep)
	}
	return out
}

type fixedDigest string

func (d fixedDigest) Digest(context.Context, entity.Symbol, []entity.ScoredNewsItem) string {
	return string(d)
}

func bullishTCS() newsUC.SymbolReport {
	return newsUC.SymbolReport{
		Symbol: "TCS.NS",
		Items: []entity.ScoredNewsItem{
			{NewsItem: entity.NewsItem{Title: "TCS profit surges", Source: "Reuters"}, Score: 2},
			{NewsItem: entity.NewsItem{Title: "TCS wins large deal"}, Score: 1},
		},
		Summary: entity.Summary{Verdict: entity.VerdictBullish, TotalScore: 3, ArticleCount: 2},
	}
}

func newCommands() *Commands {
	return &Commands{
		Watchlist: wlUC.NewService(memory.NewWatchlistRepo()),
		Agg: &fakeAggregator{reports: map[entity.Symbol]newsUC.SymbolReport{
			"TCS.NS":  bullishTCS(),
			"INFY.NS": {Symbol: "INFY.NS", Err: &newsUC.UnavailableError{Symbol: "INFY.NS"}},
		}},
	}
}

func TestCommands_WatchlistFlow(t *testing.T) {
	c := newCommands()
	ctx := context.Background()

	assert.Equal(t, emptyWatchlist, c.Handle(ctx, 1, "mylist", ""))
	assert.Equal(t, "Usage: /add SYMBOL", c.Handle(ctx, 1, "add", "  "))
	assert.Equal(t, "✅ Added TCS.NS to your watchlist.", c.Handle(ctx, 1, "add", "tcs.ns"))
	assert.Equal(t, "⚠️ TCS.NS is already in your watchlist.", c.Handle(ctx, 1, "add", "TCS.NS extra words"))
	assert.Equal(t, "✅ Added AAPL to your watchlist.", c.Handle(ctx, 1, "add", "$aapl"))
	assert.Equal(t, "📂 Your watchlist:\nTCS.NS\nAAPL", c.Handle(ctx, 1, "mylist", ""))
	assert.Equal(t, emptyWatchlist, c.Handle(ctx, 2, "mylist", ""))

	assert.Equal(t, "Usage: /remove SYMBOL", c.Handle(ctx, 1, "remove", ""))
	assert.Equal(t, "❌ Removed AAPL from your watchlist.", c.Handle(ctx, 1, "remove", "aapl"))
	assert.Equal(t, "⚠️ AAPL is not in your watchlist.", c.Handle(ctx, 1, "remove", "AAPL"))
}

func TestCommands_InvalidSymbol(t *testing.T) {
	c := newCommands()
	reply := c.Handle(context.Background(), 1, "add", "not!valid")
	assert.True(t, strings.HasPrefix(reply, "⚠️ invalid ticker"), reply)
}

func TestCommands_WatchlistFull(t *testing.T) {
	c := newCommands()
	svc := wlUC.NewService(memory.NewWatchlistRepo())
	svc.Limit = 1
	c.Watchlist = svc

	c.Handle(context.Background(), 1, "add", "AAPL")
	assert.Contains(t, c.Handle(context.Background(), 1, "add", "MSFT"), "watchlist is full")
}

func TestCommands_NewsForSymbol(t *testing.T) {
	c := newCommands()
	c.Digester = fixedDigest("Upbeat quarter.")

	reply := c.Handle(context.Background(), 1, "news", "tcs.ns")

	assert.Equal(t, "📰 TCS.NS: 🟢 Bullish (score +3, 2 articles)\n"+
		"• TCS profit surges (Reuters)\n"+
		"• TCS wins large deal\n"+
		"📝 Upbeat quarter.", reply)
}

func TestCommands_NewsOutcomes(t *testing.T) {
	c := newCommands()
	ctx := context.Background()

	assert.Equal(t, "📰 INFY.NS: no data available right now", c.Handle(ctx, 1, "news", "INFY.NS"))
	assert.Equal(t, "📰 WIPRO.NS: no recent news", c.Handle(ctx, 1, "news", "WIPRO.NS"))
	assert.Equal(t, emptyWatchlist, c.Handle(ctx, 1, "news", ""))
}

func TestCommands_NewsForWatchlist(t *testing.T) {
	c := newCommands()
	ctx := context.Background()
	c.Handle(ctx, 1, "add", "TCS.NS")
	c.Handle(ctx, 1, "add", "INFY.NS")

	reply := c.Handle(ctx, 1, "news", "")

	blocks := strings.Split(reply, "\n\n")
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "📰 TCS.NS: 🟢 Bullish"))
	assert.Equal(t, "📰 INFY.NS: no data available right now", blocks[1])
}

type fakeSectors struct {
	reports map[string]newsUC.SectorReport
	calls   []string
}

func (f *fakeSectors) SummarizeSector(_ context.Context, sector string, topK int) (newsUC.SectorReport, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s/%d", sector, topK))
	rep, ok := f.reports[sector]
	if !ok {
		return newsUC.SectorReport{Sector: sector}, nil
	}
	return rep, rep.Err
}

func itSector() newsUC.SectorReport {
	return newsUC.SectorReport{
		Sector: "Information Technology",
		Items: []entity.ScoredNewsItem{
			{NewsItem: entity.NewsItem{Title: "IT stocks rally"}, Score: 1},
			{NewsItem: entity.NewsItem{Title: "Tech hiring slows"}, Score: 0},
		},
		Summary: entity.Summary{Verdict: entity.VerdictBullish, TotalScore: 1, ArticleCount: 2},
	}
}

func TestCommands_NewsWithSector(t *testing.T) {
	c := newCommands()
	sectors := &fakeSectors{reports: map[string]newsUC.SectorReport{"Information Technology": itSector()}}
	c.Sectors = map[entity.Symbol]string{"TCS.NS": "Information Technology"}
	c.SectorAgg = sectors

	reply := c.Handle(context.Background(), 1, "news", "TCS.NS")

	blocks := strings.Split(reply, "\n\n")
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "📰 TCS.NS: 🟢 Bullish"))
	assert.Equal(t, "💼 Information Technology sector: 🟢 Bullish (score +1, 2 articles)\n"+
		"• IT stocks rally\n"+
		"• Tech hiring slows", blocks[1])
	assert.Equal(t, []string{fmt.Sprintf("Information Technology/%d", newsUC.SectorTopK)}, sectors.calls)
}

func TestCommands_NewsSectorShownOncePerReply(t *testing.T) {
	c := newCommands()
	sectors := &fakeSectors{reports: map[string]newsUC.SectorReport{"Information Technology": itSector()}}
	c.Sectors = map[entity.Symbol]string{"TCS.NS": "Information Technology", "INFY.NS": "Information Technology"}
	c.SectorAgg = sectors
	ctx := context.Background()
	c.Handle(ctx, 1, "add", "TCS.NS")
	c.Handle(ctx, 1, "add", "INFY.NS")

	blocks := strings.Split(c.Handle(ctx, 1, "news", ""), "\n\n")

	require.Len(t, blocks, 3)
	assert.True(t, strings.HasPrefix(blocks[1], "💼 Information Technology sector"))
	assert.Equal(t, "📰 INFY.NS: no data available right now", blocks[2])
	assert.Len(t, sectors.calls, 1)
}

func TestCommands_NewsSectorOmittedWhenEmptyOrFailed(t *testing.T) {
	c := newCommands()
	c.Sectors = map[entity.Symbol]string{"TCS.NS": "Energy", "WIPRO.NS": "Banking"}
	c.SectorAgg = &fakeSectors{reports: map[string]newsUC.SectorReport{
		"Banking": {Sector: "Banking", Err: &newsUC.UnavailableError{Symbol: "Banking"}},
	}}
	ctx := context.Background()

	assert.NotContains(t, c.Handle(ctx, 1, "news", "TCS.NS"), "💼")
	assert.Equal(t, "📰 WIPRO.NS: no recent news", c.Handle(ctx, 1, "news", "WIPRO.NS"))

	c.SectorAgg = nil
	assert.NotContains(t, c.Handle(ctx, 1, "news", "TCS.NS"), "💼")
}

func TestCommands_Sentiment(t *testing.T) {
	c := newCommands()
	ctx := context.Background()
	c.Handle(ctx, 1, "add", "TCS.NS")
	c.Handle(ctx, 1, "add", "WIPRO.NS")

	assert.Equal(t, "📊 Sentiment\n"+
		"TCS.NS: 🟢 Bullish (score +3, 2 articles)\n"+
		"WIPRO.NS: no recent news", c.Handle(ctx, 1, "sentiment", ""))
}

type brokenWatchlist struct{}

func (brokenWatchlist) Add(context.Context, int64, string) (entity.Symbol, error) {
	return "", errors.New("dial tcp: refused")
}
func (brokenWatchlist) Remove(context.Context, int64, string) (entity.Symbol, error) {
	return "", errors.New("dial tcp: refused")
}
func (brokenWatchlist) List(context.Context, int64) ([]entity.Symbol, error) {
	return nil, errors.New("dial tcp: refused")
}

func TestCommands_StorageErrorsHidden(t *testing.T) {
	c := newCommands()
	c.Watchlist = brokenWatchlist{}
	for _, cmd := range []string{"add", "remove", "mylist", "news", "sentiment"} {
		reply := c.Handle(context.Background(), 1, cmd, "AAPL")
		if cmd == "news" {
			// a symbol argument bypasses the watchlist
			continue
		}
		assert.NotContains(t, reply, "refused", cmd)
		assert.Contains(t, reply, "Something went wrong", cmd)
	}
}

func TestCommands_StartHelpUnknown(t *testing.T) {
	c := newCommands()
	ctx := context.Background()
	assert.Contains(t, c.Handle(ctx, 1, "start", ""), "/add SYMBOL")
	assert.Contains(t, c.Handle(ctx, 1, "help", ""), "/sentiment")
	assert.Contains(t, c.Handle(ctx, 1, "buy", ""), "Unknown command: /buy")
}

package news

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/observability/metrics"
	"stockpulse/internal/usecase/sentiment"
)

// SymbolReport is the outcome for one symbol: its articles and verdict, or the error.
type SymbolReport struct {
	Symbol  entity.Symbol
	Items   []entity.ScoredNewsItem
	Summary entity.Summary
	Err     error
}

// WatchlistReport lists one SymbolReport per requested symbol, in request order.
// Verdicts are per symbol; no cross-symbol weighting is applied.
type WatchlistReport struct {
	Symbols     []SymbolReport
	GeneratedAt time.Time
}

// Failed returns how many symbols have an error.
func (r WatchlistReport) Failed() int {
	n := 0
	for _, s := range r.Symbols {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Summarize fetches the articles for symbol and folds them into a verdict.
func (a *Aggregator) Summarize(ctx context.Context, symbol entity.Symbol, topK int) (SymbolReport, error) {
	items, err := a.NewsFor(ctx, symbol, topK)
	if err != nil {
		return SymbolReport{Symbol: symbol, Err: err}, err
	}
	summary := sentiment.Summarize(items)
	metrics.RecordVerdict(string(summary.Verdict))
	return SymbolReport{Symbol: symbol, Items: items, Summary: summary}, nil
}

// Report summarizes every symbol concurrently, at most ReportParallelism at a time.
// The whole call is bounded by budget (the configured ReportBudget when budget <= 0);
// symbols not finished in time carry the context error.
func (a *Aggregator) Report(ctx context.Context, symbols []entity.Symbol, topK int, budget time.Duration) WatchlistReport {
	if budget <= 0 {
		budget = a.cfg.ReportBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	out := make([]SymbolReport, len(symbols))
	var g errgroup.Group
	g.SetLimit(a.cfg.ReportParallelism)
	for i, sym := range symbols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i] = SymbolReport{Symbol: sym, Err: err}
				return nil
			}
			out[i], _ = a.Summarize(ctx, sym, topK)
			return nil
		})
	}
	_ = g.Wait()

	return WatchlistReport{Symbols: out, GeneratedAt: time.Now()}
}

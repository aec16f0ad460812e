// Package worker keeps the news cache warm for every watched symbol and
// exposes the worker's health and metrics.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/handler/http/respond"
	"stockpulse/internal/usecase/news"
)

const (
	statusSuccess = "success"
	statusPartial = "partial"
	statusFailure = "failure"
	statusSkipped = "skipped"
)

// SymbolSource lists every symbol anyone watches.
type SymbolSource interface {
	AllSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// Reporter refreshes the cache for a batch of symbols.
type Reporter interface {
	Report(ctx context.Context, symbols []entity.Symbol, topK int, budget time.Duration) news.WatchlistReport
}

// Stats describes one warm-up run.
type Stats struct {
	Symbols  int
	Failed   int
	Duration time.Duration
}

// Warmer runs Report over all watched symbols on a cron schedule so that
// user requests are served from a fresh cache.
type Warmer struct {
	symbols  SymbolSource
	reporter Reporter
	cfg      Config
	metrics  *Metrics
	logger   *slog.Logger
	running  atomic.Bool
}

// NewWarmer creates a Warmer. metrics may be nil.
func NewWarmer(symbols SymbolSource, reporter Reporter, cfg Config, metrics *Metrics, logger *slog.Logger) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warmer{symbols: symbols, reporter: reporter, cfg: cfg, metrics: metrics, logger: logger}
}

// RunOnce warms every watched symbol. A run already in progress makes it a no-op.
// Per-symbol failures are counted in Stats, not returned as an error.
func (w *Warmer) RunOnce(ctx context.Context) (Stats, error) {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Warn("warm-up skipped, previous run still in progress")
		w.record(statusSkipped, Stats{})
		return Stats{}, nil
	}
	defer w.running.Store(false)

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	symbols, err := w.symbols.AllSymbols(ctx)
	if err != nil {
		stats := Stats{Duration: time.Since(start)}
		w.record(statusFailure, stats)
		return stats, fmt.Errorf("list watched symbols: %w", err)
	}
	if len(symbols) == 0 {
		stats := Stats{Duration: time.Since(start)}
		w.record(statusSuccess, stats)
		w.logger.Info("warm-up finished, no watched symbols")
		return stats, nil
	}

	rep := w.reporter.Report(ctx, symbols, 0, w.cfg.Budget)
	stats := Stats{Symbols: len(symbols), Failed: rep.Failed(), Duration: time.Since(start)}

	status := statusSuccess
	switch {
	case stats.Failed == stats.Symbols:
		status = statusFailure
	case stats.Failed > 0:
		status = statusPartial
	}
	w.record(status, stats)

	w.logger.Info("warm-up finished",
		slog.String("status", status),
		slog.Int("symbols", stats.Symbols),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

func (w *Warmer) record(status string, s Stats) {
	if w.metrics == nil {
		return
	}
	w.metrics.recordRun(status, s.Duration.Seconds())
	if status != statusSkipped {
		w.metrics.recordSymbols(s.Symbols-s.Failed, s.Failed)
	}
}

// Start schedules RunOnce and blocks until ctx is done. With RunOnStart
// it warms once immediately. Running jobs finish before Start returns.
func (w *Warmer) Start(ctx context.Context) error {
	loc, err := time.LoadLocation(w.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", w.cfg.Timezone, err)
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(w.cfg.CronSchedule, func() { w.runLogged(ctx) }); err != nil {
		return fmt.Errorf("schedule warm-up: %w", err)
	}

	if w.cfg.RunOnStart {
		w.runLogged(ctx)
	}
	c.Start()
	w.logger.Info("warm-up scheduled",
		slog.String("schedule", w.cfg.CronSchedule),
		slog.String("timezone", w.cfg.Timezone))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (w *Warmer) runLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.Error("warm-up failed", slog.String("error", respond.SanitizeError(err)))
	}
}

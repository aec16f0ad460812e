// Command bot runs the Telegram front-end. It builds the same aggregator,
// cache and watchlist as the API, warms the cache on schedule and serves
// health and metrics on a side port.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"stockpulse/internal/app"
	"stockpulse/internal/handler/http/respond"
	"stockpulse/internal/handler/telegram"
	"stockpulse/internal/infra/worker"
	"stockpulse/internal/observability/logging"
	pkgconfig "stockpulse/internal/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("bot exited with error", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	logger.Info("bot stopped")
}

func run(ctx context.Context, logger *slog.Logger) error {
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN must be set")
	}

	a, err := app.Build(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database", slog.String("error", respond.SanitizeError(err)))
		}
	}()

	api, err := telegram.NewAPI(token)
	if err != nil {
		return err
	}
	logger.Info("telegram bot authorized", slog.String("username", api.Self.UserName))

	metrics := worker.NewMetrics()
	warmCfg, warnings := worker.LoadConfigFromEnv(metrics.ConfigMetrics)
	for _, w := range warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}
	if err := warmCfg.Validate(); err != nil {
		return err
	}

	bot := telegram.New(api, &telegram.Commands{
		Watchlist: a.Watchlist,
		Agg:       a.Aggregator,
		Digester:  a.Digester,
		Sectors:   a.Sectors,
		SectorAgg: a.Aggregator,
	}, telegram.DefaultConfig(), logger)

	g, gctx := errgroup.WithContext(ctx)
	if warmCfg.HealthPort != 0 {
		health := worker.NewHealthServer(fmt.Sprintf(":%d", warmCfg.HealthPort), logger)
		health.SetReady(true)
		g.Go(func() error { return health.Start(gctx) })
	}
	if pkgconfig.LoadEnvBool("WARM_ENABLED", true).Value {
		warmer := worker.NewWarmer(a.Watchlist, a.Aggregator, warmCfg, metrics, logger)
		g.Go(func() error { return warmer.Start(gctx) })
	}
	g.Go(func() error {
		err := bot.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

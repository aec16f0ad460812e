// Command api serves the stockpulse JSON API: per-symbol news and sentiment,
// per-user watchlists and watchlist reports. It also runs the cache warm-up
// schedule, since the result cache lives in this process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"stockpulse/internal/app"
	hhttp "stockpulse/internal/handler/http"
	hnews "stockpulse/internal/handler/http/news"
	"stockpulse/internal/handler/http/requestid"
	"stockpulse/internal/handler/http/respond"
	hwatchlist "stockpulse/internal/handler/http/watchlist"
	"stockpulse/internal/infra/worker"
	"stockpulse/internal/observability/logging"
	"stockpulse/internal/observability/tracing"
	pkgconfig "stockpulse/internal/pkg/config"
)

const (
	maxBodyBytes   = 1 << 16
	requestTimeout = 60 * time.Second
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("api exited with error", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

func run(ctx context.Context, logger *slog.Logger) error {
	a, err := app.Build(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database", slog.String("error", respond.SanitizeError(err)))
		}
	}()

	version := pkgconfig.LoadEnvString("VERSION", "dev")
	addr := pkgconfig.LoadEnvString("HTTP_ADDR", ":8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(a, version, logger),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", addr), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if pkgconfig.LoadEnvBool("WARM_ENABLED", true).Value {
		warmer, err := newWarmer(a, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return warmer.Start(gctx) })
	}
	return g.Wait()
}

func newHandler(a *app.App, version string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	hnews.Register(mux, a.Aggregator, a.Digester, a.Watchlist, a.Settings.News.MaxArticles)
	hwatchlist.Register(mux, a.Watchlist)

	health := &hhttp.HealthHandler{DB: a.DB, Version: version, SourceFailures: a.Aggregator.SourceFailures}
	mux.Handle("GET /health", health)
	mux.HandleFunc("GET /health/ready", health.ReadyHandler)
	mux.HandleFunc("GET /health/live", hhttp.LiveHandler)
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	cors := hhttp.DefaultCORSConfig()
	cors.AllowedOrigins = hhttp.ParseOrigins(pkgconfig.LoadEnvString("CORS_ALLOWED_ORIGINS", ""))

	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.SecurityHeaders,
		hhttp.CORS(cors, logger),
		hhttp.MetricsMiddleware,
		hhttp.LimitRequestBody(maxBodyBytes),
		hhttp.Timeout(requestTimeout),
	)
}

func newWarmer(a *app.App, logger *slog.Logger) (*worker.Warmer, error) {
	metrics := worker.NewMetrics()
	cfg, warnings := worker.LoadConfigFromEnv(metrics.ConfigMetrics)
	for _, w := range warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return worker.NewWarmer(a.Watchlist, a.Aggregator, cfg, metrics, logger), nil
}

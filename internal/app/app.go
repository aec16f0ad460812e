// Package app wires configuration, feed sources, the cache, the aggregator,
// the digest backend and watchlist storage into one object shared by the
// HTTP API and the chat bot.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"stockpulse/internal/config"
	"stockpulse/internal/domain/entity"
	"stockpulse/internal/infra/adapter/persistence/memory"
	"stockpulse/internal/infra/adapter/persistence/postgres"
	"stockpulse/internal/infra/cache"
	"stockpulse/internal/infra/db"
	"stockpulse/internal/infra/feed"
	"stockpulse/internal/infra/summarizer"
	"stockpulse/internal/repository"
	"stockpulse/internal/resilience/circuitbreaker"
	"stockpulse/internal/usecase/news"
	"stockpulse/internal/usecase/relevance"
	"stockpulse/internal/usecase/sentiment"
	"stockpulse/internal/usecase/watchlist"
)

// App holds the long-lived services of a process.
type App struct {
	Settings   config.NewsSettings
	Aggregator *news.Aggregator
	Digester   *news.Digester
	Watchlist  *watchlist.Service
	// Sectors maps symbols to the industry sector named in the sources file.
	Sectors map[entity.Symbol]string
	// DB is nil when the watchlist lives in memory.
	DB *sql.DB
}

// Build assembles an App from the environment and the sources file.
// Without DATABASE_URL the watchlist is kept in memory.
func Build(ctx context.Context, logger *slog.Logger) (*App, error) {
	settings, warnings := config.LoadNewsSettings()
	logWarnings(logger, warnings)

	sourcesFile, err := config.LoadSources(config.SourcesPath())
	if err != nil {
		return nil, err
	}
	aliases := sourcesFile.SymbolAliases()

	sources, err := feed.NewFactory(&http.Client{}, settings.News.SourceTimeout, aliases).Build(sourcesFile.Sources)
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, news.ErrNoSources
	}
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	logger.Info("news sources configured", slog.Any("sources", names))

	resultCache := cache.New[entity.ScoredNewsItem](cache.Config{
		Name:        "news",
		FailureTTL:  settings.Cache.FailureTTL,
		GracePeriod: settings.Cache.GracePeriod,
	}, cache.WithLogger(logger))

	agg := news.NewAggregator(sources,
		relevance.NewFilter(aliases),
		sentiment.NewScorer(sentiment.DefaultLexicon()),
		resultCache,
		settings.News,
	).WithLogger(logger)

	digester, err := buildDigester(logger)
	if err != nil {
		return nil, err
	}

	repo, database, err := buildRepository(ctx, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Settings:   settings,
		Aggregator: agg,
		Digester:   digester,
		Watchlist:  watchlist.NewService(repo),
		Sectors:    sourcesFile.SymbolSectors(),
		DB:         database,
	}, nil
}

// Close releases the database, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDigester(logger *slog.Logger) (*news.Digester, error) {
	cfg, warnings, err := config.LoadDigestConfig()
	logWarnings(logger, warnings)
	if err != nil {
		return nil, err
	}
	backend, err := summarizer.New(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("headline digest configured", slog.String("provider", cfg.Provider))
	return news.NewDigester(backend, cfg.Timeout), nil
}

func buildRepository(ctx context.Context, logger *slog.Logger) (repository.WatchlistRepository, *sql.DB, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		logger.Warn("DATABASE_URL not set, watchlists are kept in memory and lost on restart")
		return memory.NewWatchlistRepo(), nil, nil
	}
	database, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return postgres.NewWatchlistRepo(circuitbreaker.NewDB(database)), database, nil
}

func logWarnings(logger *slog.Logger, warnings []string) {
	for _, w := range warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}
}

// Package db opens and migrates the Postgres database that stores watchlists.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pkgconfig "stockpulse/internal/pkg/config"
	"stockpulse/internal/resilience/retry"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
// Watchlist traffic is light, so the pool is small.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// LoadConnectionConfig reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME, keeping defaults for bad values.
func LoadConnectionConfig() (ConnectionConfig, []string) {
	def := DefaultConnectionConfig()
	c := pkgconfig.NewCollector(nil)
	cfg := ConnectionConfig{
		MaxOpenConns: pkgconfig.Take(c, "db_max_open_conns",
			pkgconfig.LoadEnvInt("DB_MAX_OPEN_CONNS", def.MaxOpenConns, pkgconfig.IntBetween(1, 500))),
		MaxIdleConns: pkgconfig.Take(c, "db_max_idle_conns",
			pkgconfig.LoadEnvInt("DB_MAX_IDLE_CONNS", def.MaxIdleConns, pkgconfig.IntBetween(1, 500))),
		ConnMaxLifetime: pkgconfig.Take(c, "db_conn_max_lifetime",
			pkgconfig.LoadEnvDuration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime, pkgconfig.DurationBetween(time.Minute, 24*time.Hour))),
		ConnMaxIdleTime: pkgconfig.Take(c, "db_conn_max_idle_time",
			pkgconfig.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime, pkgconfig.DurationBetween(time.Minute, 24*time.Hour))),
	}
	return cfg, c.Warnings()
}

// Open connects to dsn, applies the pool settings and pings with backoff,
// since the database container often starts after the app.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is empty")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cfg, warnings := LoadConnectionConfig()
	for _, w := range warnings {
		slog.Warn(w)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	err = retry.Run(ctx, retry.DBStartup(), func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

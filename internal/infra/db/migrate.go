package db

import (
	"context"
	"database/sql"
)

// MigrateUp creates the watchlist schema. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS watchlist (
    user_id  BIGINT      NOT NULL,
    symbol   VARCHAR(24) NOT NULL,
    added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, symbol)
)`); err != nil {
		return err
	}

	indexes := []string{
		// warm-up worker scans distinct symbols
		`CREATE INDEX IF NOT EXISTS idx_watchlist_symbol ON watchlist(symbol)`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

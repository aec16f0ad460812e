// Package postgres implements repositories on PostgreSQL through database/sql
// and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/repository"
)

// DBTX is the query surface the repository needs. Both *sql.DB and
// *circuitbreaker.DB satisfy it.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type WatchlistRepo struct{ db DBTX }

func NewWatchlistRepo(db DBTX) repository.WatchlistRepository {
	return &WatchlistRepo{db: db}
}

// Add takes a per-user advisory lock for the transaction, so concurrent adds
// for one user see each other's rows before checking the limit.
func (repo *WatchlistRepo) Add(ctx context.Context, userID int64, symbol entity.Symbol, limit int) (bool, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
		return false, fmt.Errorf("Add: lock: %w", err)
	}

	const countQuery = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE symbol = $2)
FROM watchlist
WHERE user_id = $1`
	var total, present int
	if err := tx.QueryRowContext(ctx, countQuery, userID, symbol.String()).Scan(&total, &present); err != nil {
		return false, fmt.Errorf("Add: count: %w", err)
	}
	if present > 0 {
		return false, nil
	}
	if limit > 0 && total >= limit {
		return false, repository.ErrLimitReached
	}

	const insert = `
INSERT INTO watchlist (user_id, symbol)
VALUES ($1, $2)
ON CONFLICT (user_id, symbol) DO NOTHING`
	res, err := tx.ExecContext(ctx, insert, userID, symbol.String())
	if err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("Add: commit: %w", err)
	}
	return n > 0, nil
}

func (repo *WatchlistRepo) Remove(ctx context.Context, userID int64, symbol entity.Symbol) (bool, error) {
	const query = `DELETE FROM watchlist WHERE user_id = $1 AND symbol = $2`
	res, err := repo.db.ExecContext(ctx, query, userID, symbol.String())
	if err != nil {
		return false, fmt.Errorf("Remove: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Remove: %w", err)
	}
	return n > 0, nil
}

func (repo *WatchlistRepo) List(ctx context.Context, userID int64) ([]entity.WatchedSymbol, error) {
	const query = `
SELECT user_id, symbol, added_at
FROM watchlist
WHERE user_id = $1
ORDER BY added_at ASC, symbol ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]entity.WatchedSymbol, 0, 8)
	for rows.Next() {
		var (
			w   entity.WatchedSymbol
			sym string
		)
		if err := rows.Scan(&w.UserID, &sym, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		w.Symbol = entity.Symbol(sym)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (repo *WatchlistRepo) DistinctSymbols(ctx context.Context) ([]entity.Symbol, error) {
	const query = `SELECT DISTINCT symbol FROM watchlist ORDER BY symbol ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("DistinctSymbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.Symbol
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("DistinctSymbols: %w", err)
		}
		out = append(out, entity.Symbol(sym))
	}
	return out, rows.Err()
}

package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// DB guards a *sql.DB with a circuit breaker. It satisfies the small query
// interface used by the Postgres watchlist repository.
type DB struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens after five straight failures and probes again after 30 seconds.
func DBConfig() Config {
	return Config{
		Name:             "watchlist-db",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// NewDB wraps db with DBConfig.
func NewDB(db *sql.DB) *DB {
	return NewDBWithConfig(db, DBConfig())
}

// NewDBWithConfig wraps db with a custom configuration.
func NewDBWithConfig(db *sql.DB, cfg Config) *DB {
	return &DB{cb: New(cfg), db: db}
}

// QueryContext runs a query through the breaker.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return Run(d.cb, func() (*sql.Rows, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
}

// ExecContext runs a statement through the breaker.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return Run(d.cb, func() (sql.Result, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
}

// BeginTx starts a transaction through the breaker. Statements run on the
// returned *sql.Tx are not guarded.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return Run(d.cb, func() (*sql.Tx, error) {
		return d.db.BeginTx(ctx, opts)
	})
}

// QueryRowContext is not guarded: sql.Row defers its error to Scan.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// State returns the current state of the circuit breaker.
func (d *DB) State() gobreaker.State {
	return d.cb.State()
}

// Unwrap returns the underlying connection pool.
func (d *DB) Unwrap() *sql.DB {
	return d.db
}

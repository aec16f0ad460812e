package repository

import (
	"context"
	"errors"

	"stockpulse/internal/domain/entity"
)

// ErrLimitReached is returned by Add when userID already watches limit symbols.
var ErrLimitReached = errors.New("watchlist limit reached")

// WatchlistRepository stores per-user symbol watchlists.
type WatchlistRepository interface {
	// Add stores symbol for userID. It reports false when the symbol was
	// already present, and ErrLimitReached when storing it would exceed limit.
	// The duplicate check wins over the limit. A limit <= 0 means unlimited.
	// Implementations must make the check and the insert atomic per user.
	Add(ctx context.Context, userID int64, symbol entity.Symbol, limit int) (bool, error)
	// Remove deletes symbol for userID. It reports false when the symbol was not present.
	Remove(ctx context.Context, userID int64, symbol entity.Symbol) (bool, error)
	// List returns userID's symbols in the order they were added.
	List(ctx context.Context, userID int64) ([]entity.WatchedSymbol, error)
	// DistinctSymbols returns every symbol watched by anyone, sorted.
	DistinctSymbols(ctx context.Context) ([]entity.Symbol, error)
}

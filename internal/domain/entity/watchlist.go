package entity

import "time"

// MaxWatchlistSize is the most symbols one user may watch.
const MaxWatchlistSize = 50

// WatchedSymbol is one entry in a user's watchlist.
type WatchedSymbol struct {
	UserID  int64
	Symbol  Symbol
	AddedAt time.Time
}

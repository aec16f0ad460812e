// Package watchlist manages the symbols each user follows.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/observability/metrics"
	"stockpulse/internal/repository"
)

var (
	// ErrAlreadyWatched is returned when adding a symbol the user already follows.
	ErrAlreadyWatched = errors.New("symbol already in watchlist")
	// ErrNotWatched is returned when removing a symbol the user does not follow.
	ErrNotWatched = errors.New("symbol not in watchlist")
	// ErrWatchlistFull is returned when adding a new symbol to a watchlist
	// already at its limit. Re-adding a followed symbol reports ErrAlreadyWatched.
	ErrWatchlistFull = errors.New("watchlist is full")
)

// Service applies watchlist rules over a repository: symbol normalisation,
// duplicate detection and the per-user size limit. A Limit <= 0 disables
// the size check.
type Service struct {
	Repo  repository.WatchlistRepository
	Limit int
}

// NewService creates a Service with the default size limit.
func NewService(repo repository.WatchlistRepository) *Service {
	return &Service{Repo: repo, Limit: entity.MaxWatchlistSize}
}

// Add normalizes raw and adds it to userID's watchlist. The duplicate and
// limit checks run atomically in the repository.
func (s *Service) Add(ctx context.Context, userID int64, raw string) (entity.Symbol, error) {
	sym, err := entity.ParseSymbol(raw)
	if err != nil {
		metrics.RecordWatchlistOperation("add", false)
		return "", err
	}

	added, err := s.Repo.Add(ctx, userID, sym, s.Limit)
	if errors.Is(err, repository.ErrLimitReached) {
		metrics.RecordWatchlistOperation("add", false)
		return sym, ErrWatchlistFull
	}
	if err != nil {
		metrics.RecordWatchlistOperation("add", false)
		return "", fmt.Errorf("add to watchlist: %w", err)
	}
	if !added {
		metrics.RecordWatchlistOperation("add", false)
		return sym, ErrAlreadyWatched
	}

	metrics.RecordWatchlistOperation("add", true)
	slog.InfoContext(ctx, "symbol added to watchlist",
		slog.Int64("user_id", userID),
		slog.String("symbol", sym.String()))
	return sym, nil
}

// Remove normalizes raw and removes it from userID's watchlist.
func (s *Service) Remove(ctx context.Context, userID int64, raw string) (entity.Symbol, error) {
	sym, err := entity.ParseSymbol(raw)
	if err != nil {
		metrics.RecordWatchlistOperation("remove", false)
		return "", err
	}

	removed, err := s.Repo.Remove(ctx, userID, sym)
	if err != nil {
		metrics.RecordWatchlistOperation("remove", false)
		return "", fmt.Errorf("remove from watchlist: %w", err)
	}
	if !removed {
		metrics.RecordWatchlistOperation("remove", false)
		return sym, ErrNotWatched
	}

	metrics.RecordWatchlistOperation("remove", true)
	slog.InfoContext(ctx, "symbol removed from watchlist",
		slog.Int64("user_id", userID),
		slog.String("symbol", sym.String()))
	return sym, nil
}

// List returns userID's symbols in the order they were added.
func (s *Service) List(ctx context.Context, userID int64) ([]entity.Symbol, error) {
	entries, err := s.Repo.List(ctx, userID)
	if err != nil {
		metrics.RecordWatchlistOperation("list", false)
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	metrics.RecordWatchlistOperation("list", true)

	out := make([]entity.Symbol, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out, nil
}

// AllSymbols returns every symbol watched by any user.
func (s *Service) AllSymbols(ctx context.Context) ([]entity.Symbol, error) {
	syms, err := s.Repo.DistinctSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct symbols: %w", err)
	}
	return syms, nil
}

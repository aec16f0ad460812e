// Package memory implements repositories in process memory. It backs the
// bot when no database is configured; data is lost on restart.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/repository"
)

type WatchlistRepo struct {
	mu    sync.RWMutex
	users map[int64][]entity.WatchedSymbol
	now   func() time.Time
}

func NewWatchlistRepo() repository.WatchlistRepository {
	return &WatchlistRepo{users: make(map[int64][]entity.WatchedSymbol), now: time.Now}
}

func (r *WatchlistRepo) Add(_ context.Context, userID int64, symbol entity.Symbol, limit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.users[userID]
	if slices.ContainsFunc(list, func(w entity.WatchedSymbol) bool { return w.Symbol == symbol }) {
		return false, nil
	}
	if limit > 0 && len(list) >= limit {
		return false, repository.ErrLimitReached
	}
	r.users[userID] = append(r.users[userID], entity.WatchedSymbol{UserID: userID, Symbol: symbol, AddedAt: r.now()})
	return true, nil
}

func (r *WatchlistRepo) Remove(_ context.Context, userID int64, symbol entity.Symbol) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.users[userID]
	i := slices.IndexFunc(list, func(w entity.WatchedSymbol) bool { return w.Symbol == symbol })
	if i < 0 {
		return false, nil
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(r.users, userID)
	} else {
		r.users[userID] = list
	}
	return true, nil
}

func (r *WatchlistRepo) List(_ context.Context, userID int64) ([]entity.WatchedSymbol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.users[userID]), nil
}

func (r *WatchlistRepo) DistinctSymbols(_ context.Context) ([]entity.Symbol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[entity.Symbol]struct{})
	var out []entity.Symbol
	for _, list := range r.users {
		for _, w := range list {
			if _, ok := seen[w.Symbol]; !ok {
				seen[w.Symbol] = struct{}{}
				out = append(out, w.Symbol)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

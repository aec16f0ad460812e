// Package watchlist serves per-user watchlist management.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/handler/http/pathutil"
	"stockpulse/internal/handler/http/respond"
	wlUC "stockpulse/internal/usecase/watchlist"
)

// Service is the part of *watchlist.Service the handlers use.
type Service interface {
	Add(ctx context.Context, userID int64, raw string) (entity.Symbol, error)
	Remove(ctx context.Context, userID int64, raw string) (entity.Symbol, error)
	List(ctx context.Context, userID int64) ([]entity.Symbol, error)
}

type AddRequest struct {
	Symbol string `json:"symbol"`
}

type WatchlistResponse struct {
	UserID  int64    `json:"user_id"`
	Symbols []string `json:"symbols"`
}

type SymbolResponse struct {
	Symbol string `json:"symbol"`
}

// ListHandler serves GET /users/{id}/watchlist.
type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}
	symbols, err := h.Svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := WatchlistResponse{UserID: userID, Symbols: make([]string, 0, len(symbols))}
	for _, s := range symbols {
		out.Symbols = append(out.Symbols, s.String())
	}
	respond.JSON(w, http.StatusOK, out)
}

// AddHandler serves POST /users/{id}/watchlist with body {"symbol": "..."}.
type AddHandler struct{ Svc Service }

func (h AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respond.Error(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sym, err := h.Svc.Add(r.Context(), userID, req.Symbol)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, SymbolResponse{Symbol: sym.String()})
}

// RemoveHandler serves DELETE /users/{id}/watchlist/{symbol}.
type RemoveHandler struct{ Svc Service }

func (h RemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}
	if _, err := h.Svc.Remove(r.Context(), userID, r.PathValue("symbol")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathutil.ParseUserID(r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(w, r, http.StatusBadRequest, verr.Message)
	case errors.Is(err, wlUC.ErrAlreadyWatched):
		respond.Error(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, wlUC.ErrNotWatched):
		respond.Error(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, wlUC.ErrWatchlistFull):
		respond.Error(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		respond.Internal(w, r, err)
	}
}

package watchlist_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/handler/http/watchlist"
	"stockpulse/internal/infra/adapter/persistence/memory"
	wlUC "stockpulse/internal/usecase/watchlist"
)

func newMux(svc watchlist.Service) *http.ServeMux {
	mux := http.NewServeMux()
	watchlist.Register(mux, svc)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestWatchlistLifecycle(t *testing.T) {
	mux := newMux(wlUC.NewService(memory.NewWatchlistRepo()))

	rec := do(t, mux, http.MethodPost, "/users/42/watchlist", `{"symbol":" tcs.ns "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"symbol":"TCS.NS"}`, rec.Body.String())

	rec = do(t, mux, http.MethodPost, "/users/42/watchlist", `{"symbol":"TCS.NS"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in watchlist")

	rec = do(t, mux, http.MethodPost, "/users/42/watchlist", `{"symbol":"$aapl"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, mux, http.MethodGet, "/users/42/watchlist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42,"symbols":["TCS.NS","AAPL"]}`, rec.Body.String())

	rec = do(t, mux, http.MethodDelete, "/users/42/watchlist/tcs.ns", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, mux, http.MethodDelete, "/users/42/watchlist/TCS.NS", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, mux, http.MethodGet, "/users/7/watchlist", "")
	assert.JSONEq(t, `{"user_id":7,"symbols":[]}`, rec.Body.String())
}

func TestAddHandler_BadInput(t *testing.T) {
	mux := newMux(wlUC.NewService(memory.NewWatchlistRepo()))
	tests := []struct {
		name     string
		target   string
		body     string
		wantCode int
	}{
		{"bad user id", "/users/x/watchlist", `{"symbol":"AAPL"}`, http.StatusBadRequest},
		{"negative user id", "/users/-3/watchlist", `{"symbol":"AAPL"}`, http.StatusBadRequest},
		{"malformed json", "/users/1/watchlist", `{"symbol":`, http.StatusBadRequest},
		{"empty symbol", "/users/1/watchlist", `{"symbol":""}`, http.StatusBadRequest},
		{"invalid symbol", "/users/1/watchlist", `{"symbol":"no way"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestAddHandler_Full(t *testing.T) {
	svc := wlUC.NewService(memory.NewWatchlistRepo())
	svc.Limit = 1
	mux := newMux(svc)

	require.Equal(t, http.StatusCreated, do(t, mux, http.MethodPost, "/users/1/watchlist", `{"symbol":"AAPL"}`).Code)
	rec := do(t, mux, http.MethodPost, "/users/1/watchlist", `{"symbol":"MSFT"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

type failingService struct{}

func (failingService) Add(context.Context, int64, string) (entity.Symbol, error) {
	return "", errors.New("pq: connection refused")
}
func (failingService) Remove(context.Context, int64, string) (entity.Symbol, error) {
	return "", errors.New("pq: connection refused")
}
func (failingService) List(context.Context, int64) ([]entity.Symbol, error) {
	return nil, errors.New("pq: connection refused")
}

func TestHandlers_InternalErrorHidden(t *testing.T) {
	mux := newMux(failingService{})
	for _, rec := range []*httptest.ResponseRecorder{
		do(t, mux, http.MethodGet, "/users/1/watchlist", ""),
		do(t, mux, http.MethodPost, "/users/1/watchlist", `{"symbol":"AAPL"}`),
		do(t, mux, http.MethodDelete, "/users/1/watchlist/AAPL", ""),
	} {
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	}
}

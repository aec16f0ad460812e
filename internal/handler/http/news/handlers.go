// Package news serves per-symbol headlines, sentiment verdicts and watchlist reports.
package news

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/handler/http/pathutil"
	"stockpulse/internal/handler/http/respond"
	newsUC "stockpulse/internal/usecase/news"
)

// Aggregator is the part of *news.Aggregator the handlers use.
type Aggregator interface {
	Summarize(ctx context.Context, symbol entity.Symbol, topK int) (newsUC.SymbolReport, error)
	Report(ctx context.Context, symbols []entity.Symbol, topK int, budget time.Duration) newsUC.WatchlistReport
}

// Digester writes a short digest of headlines. Optional.
type Digester interface {
	Digest(ctx context.Context, symbol entity.Symbol, items []entity.ScoredNewsItem) string
}

// Watchlist lists the symbols a user follows.
type Watchlist interface {
	List(ctx context.Context, userID int64) ([]entity.Symbol, error)
}

// NewsHandler serves GET /news/{symbol}?limit=N.
type NewsHandler struct {
	Agg      Aggregator
	Digester Digester
	MaxLimit int
}

func (h NewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sym, ok := parseSymbol(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, h.MaxLimit)
	if !ok {
		return
	}

	rep, err := h.Agg.Summarize(r.Context(), sym, limit)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}

	out := NewsResponse{
		Symbol:  sym.String(),
		Items:   toItemDTOs(rep.Items),
		Summary: toSummaryDTO(rep.Summary),
	}
	if len(rep.Items) == 0 {
		out.Message = messageNoNews
	} else if h.Digester != nil {
		out.Digest = h.Digester.Digest(r.Context(), sym, rep.Items)
	}
	respond.JSON(w, http.StatusOK, out)
}

// SentimentHandler serves GET /sentiment/{symbol}.
type SentimentHandler struct {
	Agg Aggregator
}

func (h SentimentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sym, ok := parseSymbol(w, r)
	if !ok {
		return
	}
	rep, err := h.Agg.Summarize(r.Context(), sym, 0)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	out := SentimentResponse{Symbol: sym.String(), Summary: toSummaryDTO(rep.Summary)}
	if rep.Summary.ArticleCount == 0 {
		out.Message = messageNoNews
	}
	respond.JSON(w, http.StatusOK, out)
}

// ReportHandler serves GET /users/{id}/report?limit=N: one verdict per watched symbol.
type ReportHandler struct {
	Agg       Aggregator
	Watchlist Watchlist
	MaxLimit  int
	// Budget bounds the whole report; zero uses the aggregator default.
	Budget time.Duration
}

func (h ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := pathutil.ParseUserID(r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	limit, ok := parseLimit(w, r, h.MaxLimit)
	if !ok {
		return
	}

	symbols, err := h.Watchlist.List(r.Context(), userID)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}
	if len(symbols) == 0 {
		respond.JSON(w, http.StatusOK, ReportResponse{
			UserID:      userID,
			GeneratedAt: time.Now().UTC(),
			Symbols:     []ReportEntry{},
			Message:     "watchlist is empty",
		})
		return
	}

	rep := h.Agg.Report(r.Context(), symbols, limit, h.Budget)
	out := ReportResponse{
		UserID:      userID,
		GeneratedAt: rep.GeneratedAt.UTC(),
		Symbols:     make([]ReportEntry, 0, len(rep.Symbols)),
		Failed:      rep.Failed(),
	}
	for _, s := range rep.Symbols {
		entry := ReportEntry{Symbol: s.Symbol.String()}
		if s.Err != nil {
			entry.Error = reportReason(s.Err)
		} else {
			sum := toSummaryDTO(s.Summary)
			entry.Summary = &sum
		}
		out.Symbols = append(out.Symbols, entry)
	}
	respond.JSON(w, http.StatusOK, out)
}

func parseSymbol(w http.ResponseWriter, r *http.Request) (entity.Symbol, bool) {
	sym, err := entity.ParseSymbol(r.PathValue("symbol"))
	if err != nil {
		var verr *entity.ValidationError
		msg := "invalid symbol"
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		respond.Error(w, r, http.StatusBadRequest, msg)
		return "", false
	}
	return sym, true
}

// parseLimit reads ?limit. Absent means 0, which lets the aggregator apply its default.
func parseLimit(w http.ResponseWriter, r *http.Request, maxLimit int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || (maxLimit > 0 && n > maxLimit) {
		msg := "limit must be a positive integer"
		if maxLimit > 0 {
			msg = "limit must be between 1 and " + strconv.Itoa(maxLimit)
		}
		respond.Error(w, r, http.StatusBadRequest, msg)
		return 0, false
	}
	return n, true
}

func writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidSymbol):
		respond.Error(w, r, http.StatusBadRequest, "invalid symbol")
	case errors.Is(err, newsUC.ErrAllSourcesUnavailable):
		w.Header().Set("Retry-After", "60")
		respond.Error(w, r, http.StatusServiceUnavailable, "no data available")
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(w, r, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		// client went away
		return
	default:
		respond.Internal(w, r, err)
	}
}

func reportReason(err error) string {
	switch {
	case errors.Is(err, newsUC.ErrAllSourcesUnavailable):
		return "no data available"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timed out"
	default:
		return "failed"
	}
}

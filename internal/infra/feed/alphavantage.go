package feed

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockpulse/internal/domain/entity"
)

const (
	alphaVantageEndpoint   = "https://www.alphavantage.co/query"
	alphaVantageTimeLayout = "20060102T150405"
)

// ErrQuotaExceeded is returned when an API answers with a quota notice instead of data.
var ErrQuotaExceeded = errors.New("api quota exceeded")

// AlphaVantageSource reads the NEWS_SENTIMENT endpoint filtered by ticker.
type AlphaVantageSource struct {
	base
	apiKey string
	limit  int
}

// NewAlphaVantageSource creates an AlphaVantageSource. limit <= 0 defaults to 50.
func NewAlphaVantageSource(name, apiKey string, limit int, opts ...Option) *AlphaVantageSource {
	if limit <= 0 {
		limit = 50
	}
	return &AlphaVantageSource{
		base:   newBase(name, alphaVantageEndpoint, opts),
		apiKey: apiKey,
		limit:  limit,
	}
}

type avResponse struct {
	Information string       `json:"Information"`
	Note        string       `json:"Note"`
	Feed        []avFeedItem `json:"feed"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}

// RequestURL builds the query URL for symbol.
func (s *AlphaVantageSource) RequestURL(symbol entity.Symbol) string {
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", symbol.String())
	q.Set("sort", "LATEST")
	q.Set("limit", strconv.Itoa(s.limit))
	q.Set("apikey", s.apiKey)
	return s.endpoint + "?" + q.Encode()
}

// Fetch implements news.FeedSource.
func (s *AlphaVantageSource) Fetch(ctx context.Context, symbol entity.Symbol) ([]entity.NewsItem, error) {
	return s.guard(ctx, symbol, func(ctx context.Context) ([]entity.NewsItem, error) {
		var body avResponse
		if err := s.getJSON(ctx, s.RequestURL(symbol), nil, &body); err != nil {
			return nil, err
		}
		// Rate limit and bad-key notices come back as 200 with no feed.
		if len(body.Feed) == 0 && (body.Information != "" || body.Note != "") {
			return nil, ErrQuotaExceeded
		}

		items := make([]entity.NewsItem, 0, len(body.Feed))
		for _, f := range body.Feed {
			title := strings.TrimSpace(f.Title)
			if title == "" {
				continue
			}
			item := entity.NewsItem{
				Title:   title,
				Link:    f.URL,
				Source:  f.Source,
				Summary: f.Summary,
			}
			if item.Source == "" {
				item.Source = s.name
			}
			if ts, err := time.Parse(alphaVantageTimeLayout, f.TimePublished); err == nil {
				item.PublishedAt = &ts
			}
			items = append(items, item)
		}
		return items, nil
	})
}

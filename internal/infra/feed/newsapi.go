package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockpulse/internal/domain/entity"
)

const (
	newsAPIEndpoint = "https://newsapi.org/v2/everything"
	newsAPILookback = 30 * 24 * time.Hour

	// NewsAPI replaces takedowns with this placeholder title.
	newsAPIRemoved = "[Removed]"
)

// NewsAPISource searches NewsAPI's /v2/everything for the symbol's query term,
// newest first, over the last 30 days.
type NewsAPISource struct {
	base
	apiKey   string
	pageSize int
	now      func() time.Time
}

// NewNewsAPISource creates a NewsAPISource. pageSize <= 0 defaults to 20.
func NewNewsAPISource(name, apiKey string, pageSize int, opts ...Option) *NewsAPISource {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &NewsAPISource{
		base:     newBase(name, newsAPIEndpoint, opts),
		apiKey:   apiKey,
		pageSize: min(pageSize, 100),
		now:      time.Now,
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		URL         string     `json:"url"`
		PublishedAt *time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// RequestURL builds the search URL for symbol. The API key travels in a header.
func (s *NewsAPISource) RequestURL(symbol entity.Symbol) string {
	q := url.Values{}
	q.Set("q", s.query(symbol))
	q.Set("from", s.now().Add(-newsAPILookback).Format("2006-01-02"))
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(s.pageSize))
	return s.endpoint + "?" + q.Encode()
}

// Fetch implements news.FeedSource.
func (s *NewsAPISource) Fetch(ctx context.Context, symbol entity.Symbol) ([]entity.NewsItem, error) {
	return s.guard(ctx, symbol, func(ctx context.Context) ([]entity.NewsItem, error) {
		var body newsAPIResponse
		header := http.Header{"X-Api-Key": []string{s.apiKey}}
		if err := s.getJSON(ctx, s.RequestURL(symbol), header, &body); err != nil {
			return nil, err
		}
		if body.Status != "ok" {
			return nil, fmt.Errorf("status %q: %s %s", body.Status, body.Code, body.Message)
		}

		items := make([]entity.NewsItem, 0, len(body.Articles))
		for _, a := range body.Articles {
			title := strings.TrimSpace(a.Title)
			if title == "" || title == newsAPIRemoved {
				continue
			}
			source := a.Source.Name
			if source == "" {
				source = s.name
			}
			items = append(items, entity.NewsItem{
				Title:       title,
				Link:        a.URL,
				Source:      source,
				Summary:     a.Description,
				PublishedAt: a.PublishedAt,
			})
		}
		return items, nil
	})
}

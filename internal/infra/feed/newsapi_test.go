package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/infra/feed"
)

func TestNewsAPISource_Fetch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":       "ok",
			"totalResults": 3,
			"articles": []map[string]any{
				{"source": map[string]any{"name": "Reuters"}, "title": "Apple beats estimates", "description": "Quarterly results", "url": "https://r.example/1", "publishedAt": "2024-05-02T20:30:00Z"},
				{"source": map[string]any{"name": ""}, "title": "[Removed]", "url": "https://removed.com"},
				{"source": map[string]any{"name": ""}, "title": "Apple supplier news", "url": "https://r.example/2", "publishedAt": nil},
			},
		})
	}))
	defer srv.Close()

	src := feed.NewNewsAPISource("newsapi", "secret", 5, feed.WithEndpoint(srv.URL+"/v2/everything"))
	items, err := src.Fetch(context.Background(), "AAPL")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/v2/everything", got.URL.Path)
	assert.Equal(t, "secret", got.Header.Get("X-Api-Key"))
	assert.Empty(t, got.URL.Query().Get("apiKey"))
	q := got.URL.Query()
	assert.Equal(t, "aapl", q.Get("q"))
	assert.Equal(t, "publishedAt", q.Get("sortBy"))
	assert.Equal(t, "en", q.Get("language"))
	assert.Equal(t, "5", q.Get("pageSize"))
	from, err := time.Parse("2006-01-02", q.Get("from"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), from, 48*time.Hour)

	require.Len(t, items, 2)
	assert.Equal(t, "Apple beats estimates", items[0].Title)
	assert.Equal(t, "Reuters", items[0].Source)
	assert.Equal(t, "Quarterly results", items[0].Summary)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, "newsapi", items[1].Source)
	assert.Nil(t, items[1].PublishedAt)
}

func TestNewsAPISource_ErrorStatusInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"too many requests"}`))
	}))
	defer srv.Close()

	_, err := feed.NewNewsAPISource("newsapi", "k", 0, feed.WithEndpoint(srv.URL)).Fetch(context.Background(), "AAPL")

	assert.ErrorContains(t, err, "rateLimited")
}

func TestNewsAPISource_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid"}`))
	}))
	defer srv.Close()

	_, err := feed.NewNewsAPISource("newsapi", "bad", 0, feed.WithEndpoint(srv.URL)).Fetch(context.Background(), "AAPL")

	var statusErr *feed.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.HTTPStatus())
}

func TestNewsAPISource_RateLimitFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	src := feed.NewNewsAPISource("newsapi", "k", 0,
		feed.WithEndpoint(srv.URL),
		feed.WithRateLimit(1, 1),
		feed.WithTimeout(50*time.Millisecond))

	_, err := src.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)

	start := time.Now()
	_, err = src.Fetch(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "rate limit")
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNewsAPISource_TransportErrorHidesKey(t *testing.T) {
	src := feed.NewNewsAPISource("newsapi", "super-secret", 0, feed.WithEndpoint("http://127.0.0.1:1/v2/everything"))

	_, err := src.Fetch(context.Background(), "AAPL")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
	assert.NotContains(t, err.Error(), "q=aapl")
}

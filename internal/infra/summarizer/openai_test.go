package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/resilience/retry"
)

const openAIOK = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Infosys mixed.\nTone: neutral."}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 30, "completion_tokens": 8, "total_tokens": 38}
}`

func newTestOpenAI(t *testing.T, h http.HandlerFunc) (*OpenAI, *fakeMetrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	o := NewOpenAI("sk-test", Options{BaseURL: srv.URL + "/v1", Timeout: 5 * time.Second, MaxTokens: 90})
	o.retry = fastRetry()
	m := &fakeMetrics{}
	o.metrics = m
	return o, m
}

func TestOpenAI_Summarize(t *testing.T) {
	var body map[string]any
	o, m := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAIOK))
	})

	got, err := o.Summarize(context.Background(), "Infosys flat")

	require.NoError(t, err)
	assert.Equal(t, "Infosys mixed.\nTone: neutral.", got)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 90, body["max_tokens"])
	assert.Len(t, m.lengths, 1)
}

func TestOpenAI_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	o, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
			return
		}
		_, _ = w.Write([]byte(openAIOK))
	})

	_, err := o.Summarize(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAI_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	o, m := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	_, err := o.Summarize(context.Background(), "x")

	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, m.failures)
}

func TestOpenAI_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	o, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	_, err := o.Summarize(context.Background(), "x")

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAI_NoChoices(t *testing.T) {
	o, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := o.Summarize(context.Background(), "x")

	assert.ErrorContains(t, err, "no choices")
}

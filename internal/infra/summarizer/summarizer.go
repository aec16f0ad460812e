// Package summarizer writes short AI digests of stock headlines through
// Claude (Anthropic) or OpenAI. Both adapters share the same prompt, the
// same retry and circuit breaker policy, and the same metrics.
package summarizer

import (
	"fmt"
	"time"

	"stockpulse/internal/config"
	"stockpulse/internal/resilience/retry"
	"stockpulse/internal/usecase/news"
	"stockpulse/internal/utils/text"
)

// maxInputRunes bounds the headline block sent upstream.
const maxInputRunes = 6000

// Options tune a summarizer.
type Options struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// BaseURL overrides the provider endpoint.
	BaseURL string
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 160
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// New returns the summarizer selected by cfg, or nil when digests are disabled.
func New(cfg *config.DigestConfig) (news.Summarizer, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, nil
	}
	opts := Options{Model: cfg.Model, MaxTokens: cfg.MaxTokens, Timeout: cfg.Timeout}
	switch cfg.Provider {
	case config.DigestClaude:
		return NewClaude(cfg.APIKey, opts), nil
	case config.DigestOpenAI:
		return NewOpenAI(cfg.APIKey, opts), nil
	default:
		return nil, fmt.Errorf("unknown digest provider %q", cfg.Provider)
	}
}

func buildPrompt(headlines string) string {
	return "Summarize these stock news headlines in 2-3 short lines for a retail investor. " +
		"State the overall tone. Do not give investment advice.\n\n" +
		text.Truncate(headlines, maxInputRunes)
}

// statusError maps a provider status code onto retry.StatusCoder so that
// 429 and 5xx responses are retried and everything else is not.
func statusError(provider string, code int, err error) error {
	return fmt.Errorf("%s api error: %w", provider, &retry.HTTPError{StatusCode: code, Message: err.Error()})
}

package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"stockpulse/internal/resilience/circuitbreaker"
	"stockpulse/internal/resilience/retry"
	"stockpulse/internal/utils/text"
)

// DefaultClaudeModel is a small, fast model suited to headline digests.
const DefaultClaudeModel = "claude-haiku-4-5"

// Claude summarizes through Anthropic's Messages API.
type Claude struct {
	client  anthropic.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	opts    Options
	metrics MetricsRecorder
}

// NewClaude creates a Claude summarizer. The SDK's own retries are disabled;
// retry.Do and the circuit breaker own that policy.
func NewClaude(apiKey string, opts Options) *Claude {
	opts = opts.withDefaults(DefaultClaudeModel)
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	slog.Info("claude digest summarizer enabled",
		slog.String("model", opts.Model),
		slog.Int("max_tokens", opts.MaxTokens))

	return &Claude{
		client:  anthropic.NewClient(reqOpts...),
		breaker: circuitbreaker.New(circuitbreaker.LLMConfig("claude")),
		retry:   retry.LLM(),
		opts:    opts,
		metrics: NewPrometheusMetrics(),
	}
}

// Summarize implements news.Summarizer.
func (c *Claude) Summarize(ctx context.Context, headlines string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	summary, err := retry.Do(ctx, c.retry, func() (string, error) {
		return circuitbreaker.Run(c.breaker, func() (string, error) {
			return c.doSummarize(ctx, headlines)
		})
	})
	if err != nil {
		if circuitbreaker.IsRejection(err) {
			slog.Warn("claude api circuit breaker open, request rejected",
				slog.String("state", c.breaker.State().String()))
		}
		return "", fmt.Errorf("claude summarize: %w", err)
	}
	return summary, nil
}

func (c *Claude) doSummarize(ctx context.Context, headlines string) (string, error) {
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: int64(c.opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(headlines))),
		},
	})
	c.metrics.RecordDuration("claude", time.Since(start))

	if err != nil {
		c.metrics.RecordFailure("claude")
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", statusError("claude", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	summary := strings.TrimSpace(b.String())
	if summary == "" {
		c.metrics.RecordFailure("claude")
		return "", errors.New("claude api returned no text")
	}

	c.metrics.RecordLength("claude", text.CountRunes(summary))
	return summary, nil
}

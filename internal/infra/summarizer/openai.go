package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"stockpulse/internal/resilience/circuitbreaker"
	"stockpulse/internal/resilience/retry"
	"stockpulse/internal/utils/text"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI summarizes through the Chat Completions API.
type OpenAI struct {
	client  *openai.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	opts    Options
	metrics MetricsRecorder
}

// NewOpenAI creates an OpenAI summarizer.
func NewOpenAI(apiKey string, opts Options) *OpenAI {
	opts = opts.withDefaults(DefaultOpenAIModel)
	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	slog.Info("openai digest summarizer enabled",
		slog.String("model", opts.Model),
		slog.Int("max_tokens", opts.MaxTokens))

	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		breaker: circuitbreaker.New(circuitbreaker.LLMConfig("openai")),
		retry:   retry.LLM(),
		opts:    opts,
		metrics: NewPrometheusMetrics(),
	}
}

// Summarize implements news.Summarizer.
func (o *OpenAI) Summarize(ctx context.Context, headlines string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	summary, err := retry.Do(ctx, o.retry, func() (string, error) {
		return circuitbreaker.Run(o.breaker, func() (string, error) {
			return o.doSummarize(ctx, headlines)
		})
	})
	if err != nil {
		if circuitbreaker.IsRejection(err) {
			slog.Warn("openai api circuit breaker open, request rejected",
				slog.String("state", o.breaker.State().String()))
		}
		return "", fmt.Errorf("openai summarize: %w", err)
	}
	return summary, nil
}

func (o *OpenAI) doSummarize(ctx context.Context, headlines string) (string, error) {
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.opts.Model,
		MaxTokens: o.opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(headlines),
		}},
	})
	o.metrics.RecordDuration("openai", time.Since(start))

	if err != nil {
		o.metrics.RecordFailure("openai")
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", statusError("openai", apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", statusError("openai", reqErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		o.metrics.RecordFailure("openai")
		return "", errors.New("openai api returned no choices")
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		o.metrics.RecordFailure("openai")
		return "", errors.New("openai api returned no text")
	}

	o.metrics.RecordLength("openai", text.CountRunes(summary))
	return summary, nil
}

package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/observability/metrics"
	"stockpulse/internal/utils/text"
)

// fallbackDigestRunes is the length of the headline excerpt used when no AI digest is available.
const fallbackDigestRunes = 300

// Summarizer produces a short digest of a block of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Digester writes a two or three line digest of a symbol's headlines.
// It never changes scores or verdicts.
type Digester struct {
	summarizer Summarizer
	timeout    time.Duration
	logger     *slog.Logger
}

// NewDigester creates a Digester. A nil summarizer always yields the headline excerpt.
func NewDigester(summarizer Summarizer, timeout time.Duration) *Digester {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Digester{summarizer: summarizer, timeout: timeout, logger: slog.Default()}
}

// Digest returns a digest of items. When the summarizer fails or returns nothing,
// it falls back to the first 300 characters of the joined headlines.
func (d *Digester) Digest(ctx context.Context, symbol entity.Symbol, items []entity.ScoredNewsItem) string {
	if len(items) == 0 {
		return ""
	}
	headlines := Headlines(items)
	if d.summarizer == nil {
		return text.Truncate(headlines, fallbackDigestRunes)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	summary, err := d.summarizer.Summarize(ctx, headlines)
	summary = strings.TrimSpace(summary)
	if err != nil || summary == "" {
		d.logger.Warn("digest failed, using headline excerpt",
			slog.String("symbol", symbol.String()),
			slog.Any("error", err))
		metrics.RecordDigest(false)
		return text.Truncate(headlines, fallbackDigestRunes)
	}
	metrics.RecordDigest(true)
	return summary
}

// Headlines joins item titles one per line.
func Headlines(items []entity.ScoredNewsItem) string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	return strings.Join(titles, "\n")
}

package news_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockpulse/internal/domain/entity"
	"stockpulse/internal/usecase/news"
)

type stubSummarizer struct {
	out string
	err error
	got string
}

func (s *stubSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.got = text
	return s.out, s.err
}

func scored(titles ...string) []entity.ScoredNewsItem {
	out := make([]entity.ScoredNewsItem, 0, len(titles))
	for _, title := range titles {
		out = append(out, entity.ScoredNewsItem{NewsItem: entity.NewsItem{Title: title}})
	}
	return out
}

func TestDigester_UsesSummarizer(t *testing.T) {
	stub := &stubSummarizer{out: "  Strong quarter for TCS.  "}
	d := news.NewDigester(stub, time.Second)

	got := d.Digest(context.Background(), "TCS.NS", scored("TCS profit up", "TCS wins deal"))

	assert.Equal(t, "Strong quarter for TCS.", got)
	assert.Equal(t, "TCS profit up\nTCS wins deal", stub.got)
}

func TestDigester_FallsBackToExcerpt(t *testing.T) {
	long := strings.Repeat("é", 400)
	tests := []struct {
		name       string
		summarizer news.Summarizer
	}{
		{"nil summarizer", nil},
		{"summarizer error", &stubSummarizer{err: errors.New("rate limited")}},
		{"empty summary", &stubSummarizer{out: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := news.NewDigester(tt.summarizer, time.Second)
			got := d.Digest(context.Background(), "TCS.NS", scored(long))
			assert.Equal(t, 300, len([]rune(got)))
		})
	}
}

func TestDigester_EmptyItems(t *testing.T) {
	stub := &stubSummarizer{out: "unused"}
	d := news.NewDigester(stub, time.Second)

	assert.Empty(t, d.Digest(context.Background(), "TCS.NS", nil))
	assert.Empty(t, stub.got)
}

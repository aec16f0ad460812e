package news

import (
	"time"

	"stockpulse/internal/domain/entity"
)

// messageNoNews tells clients that sources answered but nothing matched.
const messageNoNews = "no recent news"

type ItemDTO struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Score       int        `json:"score"`
}

type SummaryDTO struct {
	Verdict      string `json:"verdict"`
	TotalScore   int    `json:"total_score"`
	ArticleCount int    `json:"article_count"`
}

type NewsResponse struct {
	Symbol  string     `json:"symbol"`
	Items   []ItemDTO  `json:"items"`
	Summary SummaryDTO `json:"summary"`
	Digest  string     `json:"digest,omitempty"`
	Message string     `json:"message,omitempty"`
}

type SentimentResponse struct {
	Symbol  string     `json:"symbol"`
	Summary SummaryDTO `json:"summary"`
	Message string     `json:"message,omitempty"`
}

// ReportEntry carries either a summary or a short reason the symbol has none.
type ReportEntry struct {
	Symbol  string      `json:"symbol"`
	Summary *SummaryDTO `json:"summary,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ReportResponse struct {
	UserID      int64         `json:"user_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Symbols     []ReportEntry `json:"symbols"`
	Failed      int           `json:"failed"`
	Message     string        `json:"message,omitempty"`
}

func toItemDTOs(items []entity.ScoredNewsItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, ItemDTO{
			Title:       it.Title,
			Link:        it.Link,
			Source:      it.Source,
			PublishedAt: it.PublishedAt,
			Score:       it.Score,
		})
	}
	return out
}

func toSummaryDTO(s entity.Summary) SummaryDTO {
	return SummaryDTO{Verdict: string(s.Verdict), TotalScore: s.TotalScore, ArticleCount: s.ArticleCount}
}

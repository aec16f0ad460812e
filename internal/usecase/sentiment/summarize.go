package sentiment

import "stockpulse/internal/domain/entity"

// Summarize sums the scores of items (one symbol's articles) and classifies the total by sign.
// An empty slice summarizes to Neutral with zero articles.
func Summarize(items []entity.ScoredNewsItem) entity.Summary {
	total := 0
	for _, it := range items {
		total += it.Score
	}
	return entity.Summary{
		Verdict:      entity.VerdictFromScore(total),
		TotalScore:   total,
		ArticleCount: len(items),
	}
}

package sentiment

import (
	"strings"
	"unicode"

	"stockpulse/internal/domain/entity"
)

// Scorer scores headlines against a Lexicon.
type Scorer struct {
	lexicon *Lexicon
}

// NewScorer creates a Scorer. A nil lexicon selects DefaultLexicon.
func NewScorer(lexicon *Lexicon) *Scorer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Scorer{lexicon: lexicon}
}

// Tokenize splits text on anything that is not a letter or digit and case-folds the pieces.
// "TCS profit surges 10%" yields [tcs profit surges 10].
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Score returns positive hits minus negative hits over the tokenized title.
// It is total: any string, including "", is accepted ("" scores 0).
func (s *Scorer) Score(title string) int {
	score := 0
	for _, tok := range Tokenize(title) {
		if s.lexicon.IsPositive(tok) {
			score++
		}
		if s.lexicon.IsNegative(tok) {
			score--
		}
	}
	return score
}

// ScoreItem attaches the title score to item.
func (s *Scorer) ScoreItem(item entity.NewsItem) entity.ScoredNewsItem {
	return entity.ScoredNewsItem{NewsItem: item, Score: s.Score(item.Title)}
}

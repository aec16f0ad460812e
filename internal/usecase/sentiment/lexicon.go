// Package sentiment implements rule-based headline sentiment: a fixed keyword
// lexicon, a per-headline scorer and a per-symbol summarizer.
// Everything here is pure and safe for concurrent use.
package sentiment

import "strings"

// Lexicon is an immutable pair of positive and negative keyword sets.
type Lexicon struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewLexicon builds a Lexicon from keyword lists. Keywords are case-folded and
// blank entries are ignored. A word present in both lists counts in both.
func NewLexicon(positive, negative []string) *Lexicon {
	return &Lexicon{
		positive: toSet(positive),
		negative: toSet(negative),
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// IsPositive reports whether token is a positive keyword. token must be case-folded.
func (l *Lexicon) IsPositive(token string) bool {
	_, ok := l.positive[token]
	return ok
}

// IsNegative reports whether token is a negative keyword. token must be case-folded.
func (l *Lexicon) IsNegative(token string) bool {
	_, ok := l.negative[token]
	return ok
}

// Size returns the number of positive and negative keywords.
func (l *Lexicon) Size() (positive, negative int) {
	return len(l.positive), len(l.negative)
}

// defaultPositive and defaultNegative are the market-news keywords used by the bot.
var (
	defaultPositive = []string{
		"gain", "gains", "rise", "rises", "rising", "rose", "surge", "surges", "surged",
		"jump", "jumps", "jumped", "soar", "soars", "soared", "rally", "rallies", "rallied",
		"up", "high", "record", "profit", "profits", "growth", "grows", "beat", "beats",
		"upgrade", "upgraded", "outperform", "buy", "bullish", "strong", "boost", "boosts",
		"expands", "expansion", "wins", "win", "approval", "approved", "dividend", "positive",
		"recovery", "rebound", "rebounds", "optimistic",
	}
	defaultNegative = []string{
		"fall", "falls", "fell", "drop", "drops", "dropped", "decline", "declines", "declined",
		"plunge", "plunges", "plunged", "slump", "slumps", "crash", "crashes", "tumble", "tumbles",
		"down", "low", "loss", "losses", "miss", "misses", "missed", "downgrade", "downgraded",
		"underperform", "sell", "bearish", "weak", "cut", "cuts", "fraud", "probe", "lawsuit",
		"penalty", "fine", "default", "layoffs", "warning", "negative", "concern", "concerns",
		"pessimistic", "selloff",
	}
)

// DefaultLexicon returns the built-in finance lexicon.
func DefaultLexicon() *Lexicon {
	return NewLexicon(defaultPositive, defaultNegative)
}

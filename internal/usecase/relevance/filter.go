// Package relevance decides whether a fetched headline concerns a given symbol.
package relevance

import (
	"strings"

	"stockpulse/internal/domain/entity"
)

// Filter matches news items to symbols by case-insensitive substring search.
//
// The needles for a symbol are its bare form (suffix stripped, lower-case) and any
// configured company-name aliases. Matching is deliberately permissive: a two or
// three letter ticker also matches inside unrelated words ("tcs" in "etcs").
// The trade-off favours recall for short headline feeds.
type Filter struct {
	aliases map[entity.Symbol][]string
}

// NewFilter creates a Filter. aliases maps a canonical symbol to extra names,
// e.g. "TCS.NS" -> ["tata consultancy"]. The map is copied.
func NewFilter(aliases map[entity.Symbol][]string) *Filter {
	copied := make(map[entity.Symbol][]string, len(aliases))
	for sym, names := range aliases {
		lower := make([]string, 0, len(names))
		for _, n := range names {
			n = strings.ToLower(strings.TrimSpace(n))
			if n != "" {
				lower = append(lower, n)
			}
		}
		copied[sym] = lower
	}
	return &Filter{aliases: copied}
}

// Needles returns the lower-cased search terms for symbol, bare form first.
func (f *Filter) Needles(symbol entity.Symbol) []string {
	needles := make([]string, 0, 1+len(f.aliases[symbol]))
	if bare := symbol.Bare(); bare != "" {
		needles = append(needles, bare)
	}
	return append(needles, f.aliases[symbol]...)
}

// Matches reports whether item mentions symbol in its title or summary.
func (f *Filter) Matches(item entity.NewsItem, symbol entity.Symbol) bool {
	h := haystack(item)
	for _, needle := range f.Needles(symbol) {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

// MentionsTerm reports whether item's title or summary contains term, ignoring case.
// An empty term matches nothing.
func MentionsTerm(item entity.NewsItem, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	return term != "" && strings.Contains(haystack(item), term)
}

func haystack(item entity.NewsItem) string {
	h := strings.ToLower(item.Title)
	if item.Summary != "" {
		h += " " + strings.ToLower(item.Summary)
	}
	return h
}

// Package text holds rune-aware helpers for user-facing text.
// Message limits in chat platforms and prompt budgets are counted in
// characters, not bytes, so everything here works on runes.
package text

import "strings"

// CountRunes counts the Unicode characters in text.
//
//	CountRunes("hello")   // 5
//	CountRunes("₹ rally") // 7
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Chunk splits s into pieces of at most limit runes, breaking on line
// boundaries where possible. A single line longer than limit is hard-split.
func Chunk(s string, limit int) []string {
	if limit <= 0 || CountRunes(s) <= limit {
		return []string{s}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		n := CountRunes(line)
		if curLen+n <= limit {
			cur.WriteString(line)
			curLen += n
			continue
		}
		flush()
		r := []rune(line)
		for len(r) > limit {
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		cur.WriteString(string(r))
		curLen = len(r)
	}
	flush()
	return chunks
}

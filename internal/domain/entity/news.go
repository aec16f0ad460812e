package entity

import "time"

// NewsItem is one article headline as delivered by a feed source.
// Values are immutable once fetched.
type NewsItem struct {
	Title       string
	Link        string
	Source      string
	Summary     string     // optional body/description when the source has one
	PublishedAt *time.Time // nil when the source gives no usable date
}

// ScoredNewsItem is a NewsItem with its keyword sentiment score.
// Score = positive keyword hits - negative keyword hits over the title.
type ScoredNewsItem struct {
	NewsItem
	Score int
}

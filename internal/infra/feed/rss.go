package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"stockpulse/internal/domain/entity"
)

// RSSSource reads an RSS or Atom feed. The URL may contain {symbol} (canonical
// symbol) and {query} (search term) placeholders, e.g. a Google News search feed.
// Without placeholders the same feed is read for every symbol and relevance
// filtering picks the matching entries.
type RSSSource struct {
	base
	urlTemplate string
}

// NewRSSSource creates an RSSSource.
func NewRSSSource(name, urlTemplate string, opts ...Option) *RSSSource {
	return &RSSSource{base: newBase(name, "", opts), urlTemplate: urlTemplate}
}

// URLFor expands the template for symbol.
func (s *RSSSource) URLFor(symbol entity.Symbol) string {
	if !entity.IsTemplate(s.urlTemplate) {
		return s.urlTemplate
	}
	r := strings.NewReplacer(
		"{symbol}", url.QueryEscape(symbol.String()),
		"{query}", url.QueryEscape(s.query(symbol)),
	)
	return r.Replace(s.urlTemplate)
}

// Fetch implements news.FeedSource.
func (s *RSSSource) Fetch(ctx context.Context, symbol entity.Symbol) ([]entity.NewsItem, error) {
	return s.guard(ctx, symbol, func(ctx context.Context) ([]entity.NewsItem, error) {
		return s.parse(ctx, s.URLFor(symbol))
	})
}

func (s *RSSSource) parse(ctx context.Context, feedURL string) ([]entity.NewsItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = s.client

	parsed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &StatusError{Source: s.name, StatusCode: httpErr.StatusCode}
		}
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]entity.NewsItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		item := entity.NewsItem{
			Title:   strings.TrimSpace(it.Title),
			Link:    it.Link,
			Source:  s.name,
			Summary: plainText(it.Description),
		}
		switch {
		case it.PublishedParsed != nil:
			item.PublishedAt = it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.PublishedAt = it.UpdatedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

// plainText strips markup from a feed description. Search feeds wrap it in HTML.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

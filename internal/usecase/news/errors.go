// Package news answers "which recent, relevant articles mention this symbol, and how do they read?"
// It fans out to the configured feed sources, filters and scores what comes back,
// and keeps the result in a TTL cache shared by every caller.
package news

import (
	"errors"
	"fmt"
	"strings"

	"stockpulse/internal/domain/entity"
)

// Sentinel errors for news use case operations.
var (
	// ErrAllSourcesUnavailable indicates that every configured source failed for a call.
	// It is distinct from an empty, successful result.
	ErrAllSourcesUnavailable = errors.New("all news sources unavailable")

	// ErrNoRelevantArticles indicates that sources answered but nothing matched the symbol.
	// NewsFor reports this case as an empty slice; see RequireArticles.
	ErrNoRelevantArticles = errors.New("no relevant articles")

	// ErrNoSources indicates that the aggregator was built without any source.
	ErrNoSources = errors.New("no news sources configured")
)

// SourceError records one source failing during a fetch.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e SourceError) Unwrap() error { return e.Err }

// UnavailableError is returned when no source produced a result.
//
// It matches ErrAllSourcesUnavailable but does not unwrap to the individual
// failures: a source timing out must not look like the caller's own context expiring.
type UnavailableError struct {
	Symbol   entity.Symbol
	Failures []SourceError
}

func (e *UnavailableError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s for %s: %s", ErrAllSourcesUnavailable, e.Symbol, strings.Join(parts, "; "))
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrAllSourcesUnavailable
}

// RequireArticles turns an empty successful result into ErrNoRelevantArticles.
// Callers that render both outcomes the same way can skip it.
func RequireArticles(items []entity.ScoredNewsItem, err error) ([]entity.ScoredNewsItem, error) {
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoRelevantArticles
	}
	return items, nil
}

// Package pathutil parses path parameters and normalizes request paths for
// metric labels.
package pathutil

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when a user ID path segment is not a positive integer.
var ErrInvalidID = errors.New("invalid user id")

// ParseUserID parses a user ID path segment.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

type pathPattern struct {
	re       *regexp.Regexp
	template string
}

// Most specific first.
var pathPatterns = []pathPattern{
	{regexp.MustCompile(`^/users/[^/]+/watchlist/[^/]+$`), "/users/:id/watchlist/:symbol"},
	{regexp.MustCompile(`^/users/[^/]+/watchlist$`), "/users/:id/watchlist"},
	{regexp.MustCompile(`^/users/[^/]+/report$`), "/users/:id/report"},
	{regexp.MustCompile(`^/news/[^/]+$`), "/news/:symbol"},
	{regexp.MustCompile(`^/sentiment/[^/]+$`), "/sentiment/:symbol"},
}

var staticPaths = map[string]bool{"/health": true, "/health/live": true, "/health/ready": true, "/metrics": true}

// NormalizePath maps a request path to its route template so that symbols and
// user IDs do not become metric label values. Unknown paths collapse to "other".
//
//	NormalizePath("/news/TCS.NS")          // "/news/:symbol"
//	NormalizePath("/users/42/watchlist/")  // "/users/:id/watchlist"
//	NormalizePath("/wp-login.php")         // "other"
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i != -1 {
		path = path[:i]
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	if staticPaths[path] {
		return path
	}
	for _, p := range pathPatterns {
		if p.re.MatchString(path) {
			return p.template
		}
	}
	return "other"
}

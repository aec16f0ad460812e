package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for feed endpoint URLs.
const maxURLLength = 2048

// templatePlaceholders are substituted by feed sources before a request is made.
var templatePlaceholders = []string{"{symbol}", "{query}"}

// ValidateFeedURL validates a configured feed endpoint or query template.
// Placeholders are replaced with a dummy value so templates parse like real URLs.
// Only http and https endpoints with a host are accepted.
func ValidateFeedURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	probe := rawURL
	for _, p := range templatePlaceholders {
		probe = strings.ReplaceAll(probe, p, "x")
	}

	parsedURL, err := url.Parse(probe)
	if err != nil {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("invalid url: %v", err)}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}
	return nil
}

// IsTemplate reports whether the URL carries a per-symbol placeholder.
func IsTemplate(rawURL string) bool {
	for _, p := range templatePlaceholders {
		if strings.Contains(rawURL, p) {
			return true
		}
	}
	return false
}

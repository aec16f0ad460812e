// Package config loads the news source list, symbol aliases and application settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockpulse/internal/domain/entity"
)

// Source kinds understood by the feed factory.
const (
	KindRSS          = "rss"
	KindNewsAPI      = "newsapi"
	KindAlphaVantage = "alphavantage"
)

// Query modes for search-style sources.
const (
	QueryBare  = "bare"  // bare ticker, e.g. "tcs"
	QueryAlias = "alias" // first configured alias, falling back to the bare ticker
)

// DefaultSourcesPath is read when SOURCES_CONFIG is unset.
const DefaultSourcesPath = "config/sources.yaml"

// SourceConfig describes one news source.
type SourceConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Disabled bool   `yaml:"disabled"`

	// URL is the feed address for kind rss; it may hold {symbol} and {query}.
	URL string `yaml:"url"`

	// Endpoint overrides the API base URL of a REST source.
	Endpoint string `yaml:"endpoint"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	PageSize           int           `yaml:"page_size"`
	Query              string        `yaml:"query"`
	Timeout            time.Duration `yaml:"timeout"`
	RateLimitPerMinute float64       `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int           `yaml:"rate_limit_burst"`
}

// SourcesFile is the layout of sources.yaml.
type SourcesFile struct {
	Sources []SourceConfig      `yaml:"sources"`
	Aliases map[string][]string `yaml:"aliases"`
	// Sectors names the industry sector of a symbol, e.g. TCS.NS: "Information Technology".
	Sectors map[string]string `yaml:"sectors"`
}

// LoadSources reads and validates a sources file.
// The path comes from SOURCES_CONFIG or the built-in default, never from user input.
func LoadSources(path string) (*SourcesFile, error) {
	// #nosec G304 -- path is operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates sources.yaml content.
func ParseSources(data []byte) (*SourcesFile, error) {
	var f SourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("sources validation failed: %w", err)
	}
	return &f, nil
}

// SourcesPath returns SOURCES_CONFIG or DefaultSourcesPath.
func SourcesPath() string {
	if p := strings.TrimSpace(os.Getenv("SOURCES_CONFIG")); p != "" {
		return p
	}
	return DefaultSourcesPath
}

// Validate checks every source and alias entry and reports all problems at once.
func (f *SourcesFile) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(f.Sources))

	for i, s := range f.Sources {
		label := fmt.Sprintf("sources[%d]", i)
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", label))
		} else if seen[s.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate name %q", label, s.Name))
		}
		seen[s.Name] = true

		switch s.Kind {
		case KindRSS:
			if err := entity.ValidateFeedURL(s.URL); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", label, err))
			}
		case KindNewsAPI, KindAlphaVantage:
			if s.APIKeyEnv == "" {
				errs = append(errs, fmt.Errorf("%s: api_key_env is required for kind %s", label, s.Kind))
			}
			if s.Endpoint != "" {
				if err := entity.ValidateFeedURL(s.Endpoint); err != nil {
					errs = append(errs, fmt.Errorf("%s: endpoint: %w", label, err))
				}
			}
		default:
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", label, s.Kind))
		}

		if s.Query != "" && s.Query != QueryBare && s.Query != QueryAlias {
			errs = append(errs, fmt.Errorf("%s: query must be %q or %q", label, QueryBare, QueryAlias))
		}
		if s.Timeout < 0 || s.Timeout > 30*time.Second {
			errs = append(errs, fmt.Errorf("%s: timeout must be between 0 and 30s", label))
		}
		if s.PageSize < 0 || s.RateLimitPerMinute < 0 || s.RateLimitBurst < 0 {
			errs = append(errs, fmt.Errorf("%s: page_size and rate limits must not be negative", label))
		}
	}

	for raw := range f.Aliases {
		if _, err := entity.ParseSymbol(raw); err != nil {
			errs = append(errs, fmt.Errorf("aliases: %w", err))
		}
	}
	for raw, sector := range f.Sectors {
		if _, err := entity.ParseSymbol(raw); err != nil {
			errs = append(errs, fmt.Errorf("sectors: %w", err))
		}
		if strings.TrimSpace(sector) == "" {
			errs = append(errs, fmt.Errorf("sectors: %s: sector name is required", raw))
		}
	}
	return errors.Join(errs...)
}

// Enabled returns the sources not marked disabled, in file order.
func (f *SourcesFile) Enabled() []SourceConfig {
	out := make([]SourceConfig, 0, len(f.Sources))
	for _, s := range f.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

// SymbolAliases returns the alias table keyed by canonical symbol.
// Entries that fail to parse are skipped; Validate reports them.
func (f *SourcesFile) SymbolAliases() map[entity.Symbol][]string {
	out := make(map[entity.Symbol][]string, len(f.Aliases))
	for raw, names := range f.Aliases {
		sym, err := entity.ParseSymbol(raw)
		if err != nil {
			continue
		}
		out[sym] = append(out[sym], names...)
	}
	return out
}

// SymbolSectors returns the sector table keyed by canonical symbol, with
// sector names trimmed. Invalid entries are skipped; Validate reports them.
func (f *SourcesFile) SymbolSectors() map[entity.Symbol]string {
	out := make(map[entity.Symbol]string, len(f.Sectors))
	for raw, sector := range f.Sectors {
		sym, err := entity.ParseSymbol(raw)
		sector = strings.Join(strings.Fields(sector), " ")
		if err != nil || sector == "" {
			continue
		}
		out[sym] = sector
	}
	return out
}

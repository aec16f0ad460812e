package feed

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"stockpulse/internal/config"
	"stockpulse/internal/domain/entity"
	"stockpulse/internal/usecase/news"
)

// Factory builds sources from configuration.
type Factory struct {
	client  *http.Client
	timeout time.Duration
	aliases map[entity.Symbol][]string
	getenv  func(string) string
}

// NewFactory creates a Factory. timeout applies to sources that do not set their own.
func NewFactory(client *http.Client, timeout time.Duration, aliases map[entity.Symbol][]string) *Factory {
	if client == nil {
		client = &http.Client{}
	}
	return &Factory{client: client, timeout: timeout, aliases: aliases, getenv: os.Getenv}
}

// AliasQuery searches for the first configured alias, or the bare ticker when there is none.
func AliasQuery(aliases map[entity.Symbol][]string) QueryFunc {
	return func(s entity.Symbol) string {
		if names := aliases[s]; len(names) > 0 {
			return names[0]
		}
		return s.Bare()
	}
}

// Build creates the enabled sources in configuration order. REST sources whose
// API key variable is empty are skipped with a warning rather than failing every call.
func (f *Factory) Build(cfgs []config.SourceConfig) ([]news.FeedSource, error) {
	out := make([]news.FeedSource, 0, len(cfgs))
	for _, c := range cfgs {
		if c.Disabled {
			continue
		}

		opts := []Option{
			WithHTTPClient(f.client),
			WithTimeout(f.timeout),
			WithTimeout(c.Timeout),
			WithEndpoint(c.Endpoint),
			WithRateLimit(c.RateLimitPerMinute, c.RateLimitBurst),
		}
		if c.Query == config.QueryAlias {
			opts = append(opts, WithQuery(AliasQuery(f.aliases)))
		}

		switch c.Kind {
		case config.KindRSS:
			out = append(out, NewRSSSource(c.Name, c.URL, opts...))
		case config.KindNewsAPI, config.KindAlphaVantage:
			key := f.getenv(c.APIKeyEnv)
			if key == "" {
				slog.Warn("news source skipped, API key not set",
					slog.String("source", c.Name),
					slog.String("env", c.APIKeyEnv))
				continue
			}
			if c.Kind == config.KindNewsAPI {
				out = append(out, NewNewsAPISource(c.Name, key, c.PageSize, opts...))
			} else {
				out = append(out, NewAlphaVantageSource(c.Name, key, c.PageSize, opts...))
			}
		default:
			return nil, fmt.Errorf("source %s: unknown kind %q", c.Name, c.Kind)
		}
	}
	return out, nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	pkgconfig "stockpulse/internal/pkg/config"
)

// Digest providers.
const (
	DigestNone   = "none"
	DigestClaude = "claude"
	DigestOpenAI = "openai"
)

// DigestConfig selects and tunes the optional AI headline digest.
type DigestConfig struct {
	// Provider is none, claude or openai. Default: none.
	Provider string

	// Model overrides the provider's default model.
	Model string

	// APIKey is read from ANTHROPIC_API_KEY or OPENAI_API_KEY depending on Provider.
	APIKey string

	// Timeout bounds one digest request. Default: 30s.
	Timeout time.Duration

	// MaxTokens caps the digest length. Default: 160.
	MaxTokens int
}

// LoadDigestConfig reads DIGEST_PROVIDER, DIGEST_MODEL, DIGEST_TIMEOUT and DIGEST_MAX_TOKENS.
// A provider without its API key is an error; an unknown provider is too.
func LoadDigestConfig() (*DigestConfig, []string, error) {
	c := pkgconfig.NewCollector(nil)
	cfg := &DigestConfig{
		Provider: strings.ToLower(pkgconfig.LoadEnvString("DIGEST_PROVIDER", DigestNone)),
		Model:    os.Getenv("DIGEST_MODEL"),
		Timeout: pkgconfig.Take(c, "digest_timeout",
			pkgconfig.LoadEnvDuration("DIGEST_TIMEOUT", 30*time.Second, pkgconfig.DurationBetween(time.Second, 2*time.Minute))),
		MaxTokens: pkgconfig.Take(c, "digest_max_tokens",
			pkgconfig.LoadEnvInt("DIGEST_MAX_TOKENS", 160, pkgconfig.IntBetween(16, 1024))),
	}

	switch cfg.Provider {
	case DigestClaude:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case DigestOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, c.Warnings(), fmt.Errorf("invalid digest configuration: %w", err)
	}
	return cfg, c.Warnings(), nil
}

// Validate checks configuration correctness.
func (c *DigestConfig) Validate() error {
	switch c.Provider {
	case DigestNone:
		return nil
	case DigestClaude, DigestOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("API key for provider %q is not set", c.Provider)
		}
	default:
		return fmt.Errorf("DIGEST_PROVIDER must be one of none, claude, openai; got %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("DIGEST_TIMEOUT must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("DIGEST_MAX_TOKENS must be positive")
	}
	return nil
}

// Enabled reports whether an AI provider is configured.
func (c *DigestConfig) Enabled() bool {
	return c.Provider != DigestNone
}

// Package config provides fail-open environment loaders.
//
// A loader never returns an error: a missing variable yields the default silently,
// and a malformed or out-of-range value yields the default plus a warning that the
// caller logs and records in ConfigMetrics. A bad setting degrades to a sane one
// instead of keeping the process from starting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one value.
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// LoadEnv reads envKey, parses it and validates it, falling back to defaultValue
// with a warning when either step fails. A nil validate accepts any parsed value.
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	fallback := func(reason error) LoadResult[T] {
		return LoadResult[T]{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, reason, defaultValue)},
			FallbackApplied: true,
		}
	}

	v, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return fallback(err)
		}
	}
	return LoadResult[T]{Value: v}
}

// LoadEnvString returns the variable or defaultValue, without validation.
func LoadEnvString(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string checked by validator.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	return LoadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a Go duration string such as "30s" or "1h30m".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	return LoadEnv(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult[int] {
	return LoadEnv(envKey, defaultValue, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return n, nil
	}, validator)
}

// LoadEnvBool loads a boolean in any form strconv.ParseBool accepts.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	return LoadEnv(envKey, defaultValue, func(s string) (bool, error) {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return b, nil
	}, nil)
}

// Collector gathers warnings from several loads and records fallbacks.
type Collector struct {
	metrics  *ConfigMetrics
	warnings []string
}

// NewCollector creates a Collector. metrics may be nil.
func NewCollector(metrics *ConfigMetrics) *Collector {
	return &Collector{metrics: metrics}
}

// Warnings returns every warning collected so far.
func (c *Collector) Warnings() []string { return c.warnings }

// Finish records the load and whether any fallback is in effect.
func (c *Collector) Finish() {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordLoadTimestamp()
	c.metrics.SetFallbackActive(len(c.warnings) > 0)
}

// Take unwraps r, noting its warnings under field.
func Take[T any](c *Collector, field string, r LoadResult[T]) T {
	if r.FallbackApplied {
		c.warnings = append(c.warnings, r.Warnings...)
		if c.metrics != nil {
			c.metrics.RecordValidationError(field)
			c.metrics.RecordFallback(field)
		}
	}
	return r.Value
}

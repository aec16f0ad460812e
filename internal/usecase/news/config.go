package news

import "time"

// Config holds the aggregator policy.
type Config struct {
	// CacheTTL is how long a successful result set stays fresh.
	CacheTTL time.Duration

	// MaxArticles caps how many scored items are kept per symbol.
	MaxArticles int

	// DefaultTopK is used when a caller passes topK <= 0.
	DefaultTopK int

	// SourceTimeout bounds each source call.
	SourceTimeout time.Duration

	// ReportParallelism limits concurrent symbols in Report.
	ReportParallelism int

	// ReportBudget bounds a whole Report call when the caller passes no budget.
	ReportBudget time.Duration
}

// DefaultConfig returns the defaults used when no environment overrides are set.
func DefaultConfig() Config {
	return Config{
		CacheTTL:          30 * time.Minute,
		MaxArticles:       6,
		DefaultTopK:       5,
		SourceTimeout:     8 * time.Second,
		ReportParallelism: 4,
		ReportBudget:      45 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig and keeps DefaultTopK within MaxArticles.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.MaxArticles <= 0 {
		c.MaxArticles = def.MaxArticles
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = def.DefaultTopK
	}
	if c.DefaultTopK > c.MaxArticles {
		c.DefaultTopK = c.MaxArticles
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = def.SourceTimeout
	}
	if c.ReportParallelism <= 0 {
		c.ReportParallelism = def.ReportParallelism
	}
	if c.ReportBudget <= 0 {
		c.ReportBudget = def.ReportBudget
	}
	return c
}

package config

import (
	"time"

	pkgconfig "stockpulse/internal/pkg/config"
	"stockpulse/internal/usecase/news"
)

// newsConfigMetrics tracks fallbacks applied to the news settings.
var newsConfigMetrics = pkgconfig.NewConfigMetrics("stockpulse_news")

// CacheSettings holds the cache failure policy.
type CacheSettings struct {
	FailureTTL  time.Duration
	GracePeriod time.Duration
}

// NewsSettings is everything the aggregator and its cache need.
type NewsSettings struct {
	News  news.Config
	Cache CacheSettings
}

// LoadNewsSettings reads the news settings from the environment.
// Invalid values fall back to defaults; the returned warnings describe each fallback.
//
//	NEWS_CACHE_TTL      30m  (1m..24h)
//	NEWS_FAILURE_TTL    2m   (1s..1h)
//	NEWS_GRACE_PERIOD   2h   (0..48h)
//	NEWS_MAX_ARTICLES   6    (1..20)
//	NEWS_DEFAULT_TOP_K  5    (1..20)
//	FEED_TIMEOUT        8s   (1s..30s)
//	REPORT_PARALLELISM  4    (1..16)
//	REPORT_BUDGET       45s  (1s..5m)
func LoadNewsSettings() (NewsSettings, []string) {
	def := news.DefaultConfig()
	c := pkgconfig.NewCollector(newsConfigMetrics)

	s := NewsSettings{
		News: news.Config{
			CacheTTL: pkgconfig.Take(c, "cache_ttl",
				pkgconfig.LoadEnvDuration("NEWS_CACHE_TTL", def.CacheTTL, pkgconfig.DurationBetween(time.Minute, 24*time.Hour))),
			MaxArticles: pkgconfig.Take(c, "max_articles",
				pkgconfig.LoadEnvInt("NEWS_MAX_ARTICLES", def.MaxArticles, pkgconfig.IntBetween(1, 20))),
			DefaultTopK: pkgconfig.Take(c, "default_top_k",
				pkgconfig.LoadEnvInt("NEWS_DEFAULT_TOP_K", def.DefaultTopK, pkgconfig.IntBetween(1, 20))),
			SourceTimeout: pkgconfig.Take(c, "feed_timeout",
				pkgconfig.LoadEnvDuration("FEED_TIMEOUT", def.SourceTimeout, pkgconfig.DurationBetween(time.Second, 30*time.Second))),
			ReportParallelism: pkgconfig.Take(c, "report_parallelism",
				pkgconfig.LoadEnvInt("REPORT_PARALLELISM", def.ReportParallelism, pkgconfig.IntBetween(1, 16))),
			ReportBudget: pkgconfig.Take(c, "report_budget",
				pkgconfig.LoadEnvDuration("REPORT_BUDGET", def.ReportBudget, pkgconfig.DurationBetween(time.Second, 5*time.Minute))),
		},
		Cache: CacheSettings{
			FailureTTL: pkgconfig.Take(c, "failure_ttl",
				pkgconfig.LoadEnvDuration("NEWS_FAILURE_TTL", 2*time.Minute, pkgconfig.DurationBetween(time.Second, time.Hour))),
			GracePeriod: pkgconfig.Take(c, "grace_period",
				pkgconfig.LoadEnvDuration("NEWS_GRACE_PERIOD", 2*time.Hour, pkgconfig.DurationBetween(0, 48*time.Hour))),
		},
	}
	c.Finish()
	return s, c.Warnings()
}

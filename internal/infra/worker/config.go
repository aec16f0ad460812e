package worker

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "stockpulse/internal/pkg/config"
)

// Config controls the cache warm-up job.
type Config struct {
	// CronSchedule is a five-field cron expression. Default "*/20 * * * *",
	// which keeps the default 30m cache TTL from ever lapsing for watched symbols.
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string

	// JobTimeout bounds one warm-up run.
	JobTimeout time.Duration

	// Budget bounds the Report call inside a run; zero uses the aggregator default.
	Budget time.Duration

	// HealthPort serves /health, /health/ready and /metrics. Zero disables the server.
	HealthPort int

	// RunOnStart warms the cache once at startup before the first tick.
	RunOnStart bool
}

// DefaultConfig returns the warm-up defaults.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "*/20 * * * *",
		Timezone:     "UTC",
		JobTimeout:   10 * time.Minute,
		Budget:       5 * time.Minute,
		HealthPort:   9091,
		RunOnStart:   true,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := pkgconfig.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := pkgconfig.ValidateDuration(c.JobTimeout, time.Minute, 2*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if c.Budget > c.JobTimeout {
		errs = append(errs, fmt.Errorf("budget %s exceeds job timeout %s", c.Budget, c.JobTimeout))
	}
	if c.HealthPort != 0 {
		if err := pkgconfig.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
			errs = append(errs, fmt.Errorf("health port: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads the warm-up settings. It never fails: invalid
// values fall back to defaults and are reported as warnings and metrics.
//
//	WARM_CRON_SCHEDULE   */20 * * * *
//	WARM_TIMEZONE        UTC
//	WARM_JOB_TIMEOUT     10m  (1m..2h)
//	WARM_BUDGET          5m   (10s..1h)
//	WORKER_HEALTH_PORT   9091 (1024..65535)
//	WARM_ON_START        true
func LoadConfigFromEnv(metrics *pkgconfig.ConfigMetrics) (Config, []string) {
	def := DefaultConfig()
	c := pkgconfig.NewCollector(metrics)

	cfg := Config{
		CronSchedule: pkgconfig.Take(c, "cron_schedule",
			pkgconfig.LoadEnvWithFallback("WARM_CRON_SCHEDULE", def.CronSchedule, pkgconfig.ValidateCronSchedule)),
		Timezone: pkgconfig.Take(c, "timezone",
			pkgconfig.LoadEnvWithFallback("WARM_TIMEZONE", def.Timezone, pkgconfig.ValidateTimezone)),
		JobTimeout: pkgconfig.Take(c, "job_timeout",
			pkgconfig.LoadEnvDuration("WARM_JOB_TIMEOUT", def.JobTimeout, pkgconfig.DurationBetween(time.Minute, 2*time.Hour))),
		Budget: pkgconfig.Take(c, "budget",
			pkgconfig.LoadEnvDuration("WARM_BUDGET", def.Budget, pkgconfig.DurationBetween(10*time.Second, time.Hour))),
		HealthPort: pkgconfig.Take(c, "health_port",
			pkgconfig.LoadEnvInt("WORKER_HEALTH_PORT", def.HealthPort, pkgconfig.IntBetween(1024, 65535))),
		RunOnStart: pkgconfig.Take(c, "run_on_start", pkgconfig.LoadEnvBool("WARM_ON_START", def.RunOnStart)),
	}
	if cfg.Budget > cfg.JobTimeout {
		cfg.Budget = cfg.JobTimeout
	}
	c.Finish()
	return cfg, c.Warnings()
}

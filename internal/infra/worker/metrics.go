package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgconfig "stockpulse/internal/pkg/config"
)

// Metrics tracks warm-up runs alongside the worker's configuration metrics:
//
//   - warm_job_runs_total{status}: success, partial, failure, skipped
//   - warm_job_duration_seconds
//   - warm_job_symbols_total{result}: warmed, failed
//   - warm_job_last_success_timestamp
type Metrics struct {
	*pkgconfig.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	SymbolsTotal         *prometheus.CounterVec
	LastSuccessTimestamp prometheus.Gauge
}

// NewMetrics registers the worker metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the worker metrics on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConfigMetrics: pkgconfig.NewConfigMetricsWith(reg, "worker"),
		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warm_job_runs_total",
			Help: "Total number of cache warm-up runs by status",
		}, []string{"status"}),
		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "warm_job_duration_seconds",
			Help:    "Duration of cache warm-up runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		SymbolsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warm_job_symbols_total",
			Help: "Total number of symbols processed by warm-up runs",
		}, []string{"result"}),
		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "warm_job_last_success_timestamp",
			Help: "Unix timestamp of the last warm-up run without symbol failures",
		}),
	}
}

func (m *Metrics) recordRun(status string, seconds float64) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
	if status != statusSkipped {
		m.JobDurationSeconds.Observe(seconds)
	}
	if status == statusSuccess {
		m.LastSuccessTimestamp.SetToCurrentTime()
	}
}

func (m *Metrics) recordSymbols(warmed, failed int) {
	m.SymbolsTotal.WithLabelValues("warmed").Add(float64(warmed))
	m.SymbolsTotal.WithLabelValues("failed").Add(float64(failed))
}

package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder records digest call metrics. Tests substitute a fake.
type MetricsRecorder interface {
	RecordDuration(provider string, d time.Duration)
	RecordLength(provider string, runes int)
	RecordFailure(provider string)
}

// PrometheusMetrics implements MetricsRecorder.
type PrometheusMetrics struct {
	duration *prometheus.HistogramVec
	length   *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

var (
	promMetrics     *PrometheusMetrics
	promMetricsOnce sync.Once
)

// NewPrometheusMetrics returns the process-wide recorder.
func NewPrometheusMetrics() *PrometheusMetrics {
	promMetricsOnce.Do(func() {
		promMetrics = &PrometheusMetrics{
			duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "stockpulse_digest_duration_seconds",
				Help:    "Latency of AI digest API calls",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			}, []string{"provider"}),
			length: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "stockpulse_digest_length_characters",
				Help:    "Digest length in characters",
				Buckets: []float64{50, 100, 200, 300, 500, 800},
			}, []string{"provider"}),
			failures: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "stockpulse_digest_api_failures_total",
				Help: "AI digest API calls that returned an error",
			}, []string{"provider"}),
		}
	})
	return promMetrics
}

func (p *PrometheusMetrics) RecordDuration(provider string, d time.Duration) {
	p.duration.WithLabelValues(provider).Observe(d.Seconds())
}

func (p *PrometheusMetrics) RecordLength(provider string, runes int) {
	p.length.WithLabelValues(provider).Observe(float64(runes))
}

func (p *PrometheusMetrics) RecordFailure(provider string) {
	p.failures.WithLabelValues(provider).Inc()
}

// Package metrics declares the process Prometheus collectors and small
// Record helpers for them. Collectors live on the default registry and are
// served by promhttp at /metrics.
//
// Label values are bounded: HTTP paths are normalized, sources come from the
// sources file and cache events from a fixed set.
package metrics

// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global tracer provider. Without an SDK provider
// installed they are no-ops, so tracing can be switched on by the process
// entry point alone.
//
// Features:
//   - HTTP server spans with W3C trace context extraction (Middleware)
//   - Aggregation spans tagged with the stock symbol (StartSymbolSpan)
package tracing

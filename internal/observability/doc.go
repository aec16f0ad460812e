// Package observability groups the logging, metrics and tracing setup shared
// by cmd/api and cmd/bot. See the logging, metrics and tracing subpackages.
package observability

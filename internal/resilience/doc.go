// Package resilience holds the fault-tolerance helpers used around external
// calls: circuitbreaker (news sources, digest providers, the watchlist
// database) and retry (digest providers, database startup).
//
// News sources are never retried inside a request. A failed source is tried
// again when the cached result for the symbol expires.
package resilience

// Package resilience groups the fault tolerance helpers used by the dashboard.
//
// Subpackages:
//   - circuitbreaker: gobreaker wrappers for the market-data API, the backend
//     and the durable cache store
//   - retry: exponential backoff for transient local failures such as a
//     locked SQLite database
//
// Upstream HTTP calls are guarded by a breaker but never retried. A failing
// market-data call degrades to fallback data instead.
package resilience

// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Upstream request metrics (count, duration, status class)
//   - Fallback and search race outcomes
//   - Analysis cache hit/miss by tier
//   - Circuit breaker state
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint of the watch command.
//
// Example usage:
//
//	import "coin-dashboard/internal/observability/metrics"
//
//	func topCoins() {
//	    start := time.Now()
//	    // ... call upstream ...
//	    metrics.RecordUpstreamRequest("coingecko", "markets", resp.StatusCode, time.Since(start))
//	    metrics.RecordFetchOutcome("top_coins", metrics.OutcomeLive)
//	}
package metrics

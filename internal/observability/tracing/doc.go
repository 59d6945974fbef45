// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global tracer provider, so they are no-ops
// until the binary installs a real provider and exporter.
//
// Features:
//   - Internal spans for market-data and analysis operations (StartSpan)
//   - Client spans and trace context propagation for outbound HTTP (Transport)
//
// Example usage:
//
//	import "coin-dashboard/internal/observability/tracing"
//
//	func topCoins(ctx context.Context) {
//	    ctx, span := tracing.StartSpan(ctx, "coingecko.TopCoins")
//	    defer span.End()
//	    // ... call upstream ...
//	}
package tracing

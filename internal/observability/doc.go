// Package observability provides structured logging, Prometheus metrics and
// OpenTelemetry tracing for the dashboard client.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry spans and an instrumented HTTP transport
//
// Example usage:
//
//	import (
//	    "coin-dashboard/internal/observability/logging"
//	    "coin-dashboard/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("dashboard started")
//
//	    metrics.RecordFetchOutcome("top_coins", metrics.OutcomeFallback)
//	}
package observability

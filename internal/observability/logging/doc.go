// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Optional size-rotated log files (LOG_FILE)
//   - Request ID propagation for backend calls
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "coin-dashboard/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("dashboard started", slog.String("version", "1.0"))
//	}
//
//	func fetch(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
//	    logger.Info("calling backend")
//	}
package logging

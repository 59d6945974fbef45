package metrics

import (
	"strconv"
	"time"
)

// Fetch outcomes recorded by market-data operations.
const (
	OutcomeLive        = "live"
	OutcomeFallback    = "fallback"
	OutcomeRateLimited = "rate_limited"
	OutcomeEmpty       = "empty"
)

// Search race winners.
const (
	WinnerLive     = "live"
	WinnerTimer    = "timer"
	WinnerCanceled = "canceled"
)

// Cache tiers and lookup results.
const (
	TierMemory  = "memory"
	TierDurable = "durable"

	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultExpired = "expired"
)

// RecordUpstreamRequest records an outbound request. statusCode 0 means the
// request failed before a response arrived.
func RecordUpstreamRequest(api, endpoint string, statusCode int, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(api, endpoint, StatusClass(statusCode)).Inc()
	UpstreamRequestDuration.WithLabelValues(api, endpoint).Observe(duration.Seconds())
}

// StatusClass collapses a status code into a low-cardinality label.
// 429 is kept distinct so throttling is visible apart from other client errors.
func StatusClass(statusCode int) string {
	switch {
	case statusCode == 0:
		return "error"
	case statusCode == 429:
		return "429"
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return strconv.Itoa(statusCode/100) + "xx"
	}
}

// RecordFetchOutcome records how a market-data operation was served.
func RecordFetchOutcome(operation, outcome string) {
	FetchOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordSearchRace records the winning branch of a search race.
func RecordSearchRace(winner string) {
	SearchRaceWinsTotal.WithLabelValues(winner).Inc()
}

// RecordCacheLookup records a lookup against one cache tier.
func RecordCacheLookup(tier, result string) {
	CacheLookupsTotal.WithLabelValues(tier, result).Inc()
}

// RecordCacheDurableError records a swallowed durable-tier failure.
func RecordCacheDurableError(operation string) {
	CacheDurableErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordAnalysisRequest records a rug pull analysis backend call.
func RecordAnalysisRequest(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AnalysisRequestsTotal.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState publishes a breaker's state as a gauge value.
func SetCircuitBreakerState(name string, state float64) {
	UpstreamCircuitBreakerState.WithLabelValues(name).Set(state)
}

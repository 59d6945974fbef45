// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream metrics track outbound HTTP calls to the market-data API and the backend
var (
	// UpstreamRequestsTotal counts outbound requests by API, endpoint and status class
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of outbound requests to upstream APIs",
		},
		[]string{"api", "endpoint", "status"},
	)

	// UpstreamRequestDuration measures outbound request latency in seconds
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Outbound request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
		[]string{"api", "endpoint"},
	)

	// UpstreamCircuitBreakerState tracks circuit breaker state per upstream.
	// 0 = closed, 1 = half-open, 2 = open
	UpstreamCircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "upstream_circuit_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Resilience metrics track how often the dashboard degrades to fallback data
var (
	// FetchOutcomesTotal counts market-data operations by how they were served.
	// outcome: live, fallback, rate_limited, empty
	FetchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_fetch_outcomes_total",
			Help: "Market-data operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// SearchRaceWinsTotal counts which branch settled the search race first.
	// winner: live, timer, canceled
	SearchRaceWinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_race_wins_total",
			Help: "Search races by winning branch",
		},
		[]string{"winner"},
	)
)

// Cache metrics track the two-tier analysis cache
var (
	// CacheLookupsTotal counts cache lookups by tier and result (hit, miss, expired)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_lookups_total",
			Help: "Analysis cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	// CacheDurableErrorsTotal counts swallowed durable-tier failures by operation
	CacheDurableErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_durable_errors_total",
			Help: "Durable cache tier failures swallowed by the cache",
		},
		[]string{"operation"},
	)

	// AnalysisRequestsTotal counts rug pull analysis requests that reached the backend
	AnalysisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_backend_requests_total",
			Help: "Rug pull analysis requests sent to the backend by result",
		},
		[]string{"result"},
	)
)

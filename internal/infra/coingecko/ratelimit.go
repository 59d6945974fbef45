package coingecko

import (
	"golang.org/x/time/rate"
)

// RateLimiter is a local token bucket in front of the market-data API.
// A call that finds the bucket empty is served from fallback data instead of
// waiting, the same way an upstream 429 is.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows requestsPerSecond sustained with the given burst.
// The free tier allows roughly 30 requests per minute.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Allow reports whether a request may be sent now and consumes a token if so.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}

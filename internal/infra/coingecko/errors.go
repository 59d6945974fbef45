package coingecko

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"coin-dashboard/internal/infra/fallback"
	"coin-dashboard/internal/resilience/circuitbreaker"
)

// ErrThrottled marks responses that should be treated as rate limiting:
// an upstream 429 or an exhausted local request budget.
var ErrThrottled = errors.New("coingecko: throttled")

// StatusError is a non-2xx answer from the market-data API.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
}

// RateLimitError is a 429 answer. RetryAfter is zero when the upstream sent no hint.
type RateLimitError struct {
	Endpoint   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limit exceeded (retry after %v)", e.Endpoint, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limit exceeded", e.Endpoint)
}

func (e *RateLimitError) Unwrap() error { return ErrThrottled }

// IsThrottled reports whether err stems from rate limiting.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// fallbackReason picks the synthesized-detail wording for err. Any answered
// request counts as rate limiting, matching how the free tier fails.
func fallbackReason(err error) fallback.Reason {
	var statusErr *StatusError
	if IsThrottled(err) || errors.As(err, &statusErr) || circuitbreaker.IsRejected(err) {
		return fallback.ReasonRateLimited
	}
	return fallback.ReasonUnavailable
}

// retryAfter reads the Retry-After header in seconds.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnexpectedStatus is wrapped by every StatusError.
	ErrUnexpectedStatus = errors.New("backend: unexpected status")

	// ErrRateLimited is additionally wrapped by a StatusError for HTTP 429.
	ErrRateLimited = errors.New("backend: rate limited")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	// Op reads as a verb phrase, e.g. "fetch news summary".
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to %s: %d", e.Op, e.StatusCode)
}

func (e *StatusError) Unwrap() []error {
	if e.StatusCode == http.StatusTooManyRequests {
		return []error{ErrUnexpectedStatus, ErrRateLimited}
	}
	return []error{ErrUnexpectedStatus}
}

// IsRateLimited reports whether err is a backend 429.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

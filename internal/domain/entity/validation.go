package entity

import (
	"fmt"
	"net/url"
)

// maxCoinIDLength bounds coin identifiers embedded in request paths and storage keys.
const maxCoinIDLength = 128

// maxPodcastCoins bounds how many coins a single podcast may cover.
const maxPodcastCoins = 20

// MinSearchQueryLength is the shortest query that is sent upstream.
const MinSearchQueryLength = 2

// ValidateCoinID checks that a coin identifier is safe to place in a URL path
// and a storage key. Identifiers are lowercase slugs such as "bitcoin" or "usd-coin".
func ValidateCoinID(id string) error {
	if id == "" {
		return &ValidationError{Field: "coin_id", Message: "coin id is required", Err: ErrInvalidCoinID}
	}

	if len(id) > maxCoinIDLength {
		return &ValidationError{
			Field:   "coin_id",
			Message: fmt.Sprintf("coin id must not exceed %d characters", maxCoinIDLength),
			Err:     ErrInvalidCoinID,
		}
	}

	for _, r := range id {
		if !isSlugRune(r) {
			return &ValidationError{
				Field:   "coin_id",
				Message: fmt.Sprintf("coin id contains invalid character %q", r),
				Err:     ErrInvalidCoinID,
			}
		}
	}

	return nil
}

// IsSearchable reports whether a query is long enough to be sent upstream.
// The query is measured as given; surrounding spaces count.
func IsSearchable(query string) bool {
	return len([]rune(query)) >= MinSearchQueryLength
}

// ValidateSearchQuery returns ErrInvalidQuery when query is too short to search.
func ValidateSearchQuery(query string) error {
	if !IsSearchable(query) {
		return &ValidationError{
			Field:   "query",
			Message: fmt.Sprintf("query must be at least %d characters", MinSearchQueryLength),
			Err:     ErrInvalidQuery,
		}
	}
	return nil
}

// ValidatePodcastRequest validates a podcast generation request before it is sent.
func ValidatePodcastRequest(req PodcastRequest) error {
	if len(req.CoinIDs) == 0 {
		return &ValidationError{Field: "coin_ids", Message: "at least one coin is required"}
	}

	if len(req.CoinIDs) > maxPodcastCoins {
		return &ValidationError{
			Field:   "coin_ids",
			Message: fmt.Sprintf("at most %d coins are allowed", maxPodcastCoins),
		}
	}

	for _, id := range req.CoinIDs {
		if err := ValidateCoinID(id); err != nil {
			return err
		}
	}

	if req.DurationMinutes < 0 {
		return &ValidationError{Field: "duration_minutes", Message: "duration must not be negative"}
	}

	return nil
}

// EscapeCoinID escapes a coin identifier for use as a single URL path segment.
func EscapeCoinID(id string) string {
	return url.PathEscape(id)
}

func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	default:
		return false
	}
}

// Package rugpull provides the rug pull analysis use case: a cached,
// deduplicated front for the backend's analysis endpoint.
package rugpull

import "errors"

// ErrAnalysisUnavailable wraps every backend failure returned by Analyze.
var ErrAnalysisUnavailable = errors.New("rug pull analysis unavailable")

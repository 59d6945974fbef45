// Package keyring rotates market-data API keys across outbound requests.
//
// The market-data provider enforces a per-key rate limit. When calls arrive
// faster than the cooldown window, the Rotator spreads them across the
// configured keys round-robin; slower traffic keeps using the current key.
// A single key never rotates and an empty pool emits no auth header.
package keyring

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// HeaderName is the header the market-data API reads the key from.
const HeaderName = "x-cg-api-key"

// DefaultCooldown is the window within which consecutive calls rotate keys.
const DefaultCooldown = time.Second

// Rotator hands out API keys. It is safe for concurrent use; all state
// changes happen inside its own methods.
type Rotator struct {
	mu       sync.Mutex
	keys     []string
	current  int
	lastUsed time.Time
	cooldown time.Duration
	now      func() time.Time
}

// Option configures a Rotator.
type Option func(*Rotator)

// WithCooldown overrides the rotation cooldown window.
func WithCooldown(d time.Duration) Option {
	return func(r *Rotator) {
		if d > 0 {
			r.cooldown = d
		}
	}
}

// WithClock injects the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Rotator) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a Rotator over the given keys. Blank entries are dropped so an
// unset secondary key does not become an empty credential.
func New(keys []string, opts ...Option) *Rotator {
	pool := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			pool = append(pool, k)
		}
	}

	r := &Rotator{
		keys:     pool,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of usable keys.
func (r *Rotator) Len() int {
	return len(r.keys)
}

// Key returns the key to use for the next request, or "" when no keys are configured.
// With two or more keys, a call arriving within the cooldown of the previous
// call advances to the next key first. Every call records its time of use.
func (r *Rotator) Key() string {
	if len(r.keys) == 0 {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.keys) > 1 && !r.lastUsed.IsZero() && now.Sub(r.lastUsed) < r.cooldown {
		r.current = (r.current + 1) % len(r.keys)
	}
	r.lastUsed = now

	return r.keys[r.current]
}

// Headers returns the auth header for the next request. The map is empty when
// no keys are configured.
func (r *Rotator) Headers() http.Header {
	h := make(http.Header)
	if key := r.Key(); key != "" {
		h.Set(HeaderName, key)
	}
	return h
}

// Apply sets the auth header on req. It is a no-op for an empty pool.
func (r *Rotator) Apply(req *http.Request) {
	for name, values := range r.Headers() {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
}

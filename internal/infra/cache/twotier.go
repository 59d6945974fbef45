package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/observability/logging"
	"coin-dashboard/internal/observability/metrics"
)

const (
	// DefaultTTL is how long an analysis stays valid.
	DefaultTTL = 4 * time.Hour

	// KeyPrefix namespaces analysis entries in the durable store.
	KeyPrefix = "rugpull_"
)

// Entry is the stored form of a cached analysis.
type Entry struct {
	Data      entity.RugPullRisk `json:"data"`
	Timestamp int64              `json:"timestamp"` // unix ms
}

// PutResult reports the durable-tier outcome of a Put. The memory tier
// always succeeds.
type PutResult struct {
	DurableErr error
}

// Persisted reports whether the entry reached the durable tier.
func (r PutResult) Persisted() bool { return r.DurableErr == nil }

// TwoTier caches rug pull analyses in memory and in a durable Store.
type TwoTier struct {
	mu      sync.RWMutex
	memory  map[string]Entry
	durable Store
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TwoTier cache.
type Option func(*TwoTier)

// WithTTL sets the validity window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *TwoTier) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *TwoTier) { c.now = now }
}

// NewTwoTier returns a cache over durable. A nil durable store keeps
// entries in memory only.
func NewTwoTier(durable Store, opts ...Option) *TwoTier {
	c := &TwoTier{
		memory:  make(map[string]Entry),
		durable: durable,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the validity window.
func (c *TwoTier) TTL() time.Duration { return c.ttl }

// Key returns the durable key for a coin id.
func Key(coinID string) string { return KeyPrefix + coinID }

// Get returns a valid analysis for coinID, checking memory then the
// durable tier. A valid durable hit is copied into memory. Expired entries
// are misses and are left in place.
func (c *TwoTier) Get(ctx context.Context, coinID string) (entity.RugPullRisk, bool) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.memory[coinID]
	c.mu.RUnlock()
	if ok {
		if c.valid(entry, now) {
			metrics.RecordCacheLookup(metrics.TierMemory, metrics.ResultHit)
			return entry.Data, true
		}
		metrics.RecordCacheLookup(metrics.TierMemory, metrics.ResultExpired)
	} else {
		metrics.RecordCacheLookup(metrics.TierMemory, metrics.ResultMiss)
	}

	if c.durable == nil {
		return entity.RugPullRisk{}, false
	}

	raw, err := c.durable.Get(ctx, Key(coinID))
	if errors.Is(err, ErrNotFound) {
		metrics.RecordCacheLookup(metrics.TierDurable, metrics.ResultMiss)
		return entity.RugPullRisk{}, false
	}
	if err != nil {
		c.durableFailure(ctx, "get", coinID, err)
		return entity.RugPullRisk{}, false
	}

	var stored Entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.durableFailure(ctx, "decode", coinID, err)
		return entity.RugPullRisk{}, false
	}
	if !c.valid(stored, now) {
		metrics.RecordCacheLookup(metrics.TierDurable, metrics.ResultExpired)
		return entity.RugPullRisk{}, false
	}

	c.mu.Lock()
	c.memory[coinID] = stored
	c.mu.Unlock()
	metrics.RecordCacheLookup(metrics.TierDurable, metrics.ResultHit)
	return stored.Data, true
}

// Put stores risk for coinID in memory, then in the durable tier.
// A durable failure is reported in the result and never undoes the memory write.
func (c *TwoTier) Put(ctx context.Context, coinID string, risk entity.RugPullRisk) PutResult {
	entry := Entry{Data: risk, Timestamp: c.now().UnixMilli()}

	c.mu.Lock()
	c.memory[coinID] = entry
	c.mu.Unlock()

	if c.durable == nil {
		return PutResult{}
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		err = fmt.Errorf("encode entry: %w", err)
		c.durableFailure(ctx, "encode", coinID, err)
		return PutResult{DurableErr: err}
	}
	if err := c.durable.Set(ctx, Key(coinID), raw); err != nil {
		c.durableFailure(ctx, "put", coinID, err)
		return PutResult{DurableErr: err}
	}
	return PutResult{}
}

func (c *TwoTier) valid(e Entry, now time.Time) bool {
	age := now.Sub(time.UnixMilli(e.Timestamp))
	return age < c.ttl
}

func (c *TwoTier) durableFailure(ctx context.Context, op, coinID string, err error) {
	metrics.RecordCacheDurableError(op)
	logging.FromContext(ctx).Debug("durable cache tier unavailable",
		slog.String("operation", op),
		slog.String("coin_id", coinID),
		slog.Any("error", err))
}

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coin-dashboard/internal/resilience/circuitbreaker"
	"coin-dashboard/internal/resilience/retry"
)

// SQLiteStore is a Store backed by the kv_store table.
// Writes retry on lock contention; an optional breaker short-circuits a broken database.
type SQLiteStore struct {
	db      *sql.DB
	now     func() time.Time
	retry   retry.Config
	breaker *circuitbreaker.CircuitBreaker
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithBreaker guards every statement with cb.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) SQLiteOption {
	return func(s *SQLiteStore) { s.breaker = cb }
}

// WithRetry overrides the write retry policy.
func WithRetry(cfg retry.Config) SQLiteOption {
	return func(s *SQLiteStore) { s.retry = cfg }
}

// WithStoreClock sets the clock used for updated_at.
func WithStoreClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore wraps a migrated database handle.
func NewSQLiteStore(db *sql.DB, opts ...SQLiteOption) *SQLiteStore {
	s := &SQLiteStore{
		db:    db,
		now:   time.Now,
		retry: retry.StoreConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `
SELECT value
FROM kv_store
WHERE key = ?
LIMIT 1`
	var value string
	found := true
	err := s.guard(func() error {
		err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `
INSERT INTO kv_store (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at`
	updatedAt := s.now().UnixMilli()
	err := s.guard(func() error {
		return retry.WithBackoff(ctx, s.retry, func() error {
			_, err := s.db.ExecContext(ctx, query, key, string(value), updatedAt)
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("Set: ExecContext: %w", err)
	}
	return nil
}

func (s *SQLiteStore) guard(fn func() error) error {
	if s.breaker == nil {
		return fn()
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

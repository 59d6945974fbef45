package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("database is locked (5) (SQLITE_BUSY)")

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Retryable:      IsBusy,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return errBusy
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return errBusy
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, errBusy)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	constraint := errors.New("constraint failed: NOT NULL")
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return constraint
	})

	assert.Same(t, constraint, err)
	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	cfg := fastConfig(5)
	cfg.InitialDelay = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := WithBackoff(ctx, cfg, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errBusy
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestWithBackoff_DefaultClassifier(t *testing.T) {
	cfg := fastConfig(2)
	cfg.Retryable = nil

	attempts := 0
	err := WithBackoff(context.Background(), cfg, func() error {
		attempts++
		return fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"timeout", syscall.ETIMEDOUT, true},
		{"unreachable", syscall.ENETUNREACH, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy code", errors.New("exec: SQLITE_BUSY"), true},
		{"locked code", errors.New("SQLITE_LOCKED: table locked"), true},
		{"locked message", errors.New("database is locked"), true},
		{"other", errors.New("no such table: kv_store"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusy(tt.err))
		})
	}
}

func TestStoreConfig(t *testing.T) {
	cfg := StoreConfig()

	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, 20*time.Millisecond, cfg.InitialDelay)
	assert.LessOrEqual(t, cfg.InitialDelay, cfg.MaxDelay)
	require.NotNil(t, cfg.Retryable)
	assert.True(t, cfg.Retryable(errBusy))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Nil(t, cfg.Retryable)
	assert.Equal(t, 2.0, cfg.Multiplier)
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.5)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+base/2)
	}
}

func TestAddJitter_ZeroFraction(t *testing.T) {
	assert.Equal(t, time.Second, addJitter(time.Second, 0))
}

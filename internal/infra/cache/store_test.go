package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	value := []byte(`["bitcoin"]`)
	require.NoError(t, s.Set(ctx, "favoriteCoinIds", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "favoriteCoinIds")
	require.NoError(t, err)
	assert.Equal(t, `["bitcoin"]`, string(got))

	got[0] = 'y'
	again, _ := s.Get(ctx, "favoriteCoinIds")
	assert.Equal(t, `["bitcoin"]`, string(again))
	assert.Equal(t, 1, s.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rugpull_bitcoin", Key("bitcoin"))
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type payload struct {
		Symbol string  `json:"symbol"`
		Spot   float64 `json:"spot"`
	}

	require.NoError(t, c.Set(ctx, "scan:all:2025-01-02", payload{Symbol: "XAUUSD", Spot: 2415.3}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "scan:all:2025-01-02", &got))
	assert.Equal(t, "XAUUSD", got.Symbol)
	assert.Equal(t, 2415.3, got.Spot)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	var out string
	err := c.Get(context.Background(), "missing", &out)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	var out string
	err := c.Get(ctx, "k", &out)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	require.NoError(t, c.Delete(ctx, "a", "b"))

	var out int
	assert.True(t, errors.Is(c.Get(ctx, "a", &out), ErrCacheMiss))
	assert.True(t, errors.Is(c.Get(ctx, "b", &out), ErrCacheMiss))
}

package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := engine.NewMemoryCache(10)
	ctx := context.Background()

	entry := &engine.CacheEntry{
		Data:      []byte(`[{"Name":"bridge"}]`),
		ExpiresAt: time.Now().Add(time.Minute),
	}

	require.NoError(t, cache.Set(ctx, "GET:/networks", entry))

	got, err := cache.Get(ctx, "GET:/networks")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryCache_GetMissing(t *testing.T) {
	t.Parallel()

	cache := engine.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrCacheKeyNotFound)
}

func TestMemoryCache_ExpiredEntry(t *testing.T) {
	t.Parallel()

	cache := engine.NewMemoryCache(10)
	ctx := context.Background()

	entry := &engine.CacheEntry{
		Data:      []byte("stale"),
		ExpiresAt: time.Now().Add(-time.Second),
	}

	require.NoError(t, cache.Set(ctx, "key", entry))

	_, err := cache.Get(ctx, "key")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrCacheEntryExpired)
	// The expired entry is dropped, not resurrected.
	assert.False(t, cache.Has(ctx, "key"))
}

func TestMemoryCache_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	cache := engine.NewMemoryCache(2)
	ctx := context.Background()
	expiry := time.Now().Add(time.Minute)

	require.NoError(t, cache.Set(ctx, "first", &engine.CacheEntry{
		Data: []byte("1"), ExpiresAt: expiry, CreatedAt: time.Now().Add(-2 * time.Second),
	}))
	require.NoError(t, cache.Set(ctx, "second", &engine.CacheEntry{
		Data: []byte("2"), ExpiresAt: expiry, CreatedAt: time.Now().Add(-time.Second),
	}))
	require.NoError(t, cache.Set(ctx, "third", &engine.CacheEntry{
		Data: []byte("3"), ExpiresAt: expiry,
	}))

	assert.False(t, cache.Has(ctx, "first"))
	assert.True(t, cache.Has(ctx, "second"))
	assert.True(t, cache.Has(ctx, "third"))
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	t.Parallel()

	cache := engine.NewMemoryCache(2)
	ctx := context.Background()
	expiry := time.Now().Add(time.Minute)

	require.NoError(t, cache.Set(ctx, "a", &engine.CacheEntry{Data: []byte("1"), ExpiresAt: expiry}))
	require.NoError(t, cache.Set(ctx, "b", &engine.CacheEntry{Data: []byte("2"), ExpiresAt: expiry}))
	require.NoError(t, cache.Set(ctx, "a", &engine.CacheEntry{Data: []byte("1b"), ExpiresAt: expiry}))

	assert.True(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := engine.NewMemoryCache(10)
	ctx := context.Background()
	expiry := time.Now().Add(time.Minute)

	require.NoError(t, cache.Set(ctx, "a", &engine.CacheEntry{Data: []byte("1"), ExpiresAt: expiry}))
	require.NoError(t, cache.Set(ctx, "b", &engine.CacheEntry{Data: []byte("2"), ExpiresAt: expiry}))

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "b"))
}

func TestMemoryCache_Cleanup(t *testing.T) {
	t.Parallel()

	cache := engine.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "live", &engine.CacheEntry{
		Data: []byte("1"), ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, cache.Set(ctx, "dead", &engine.CacheEntry{
		Data: []byte("2"), ExpiresAt: time.Now().Add(-time.Minute),
	}))

	cache.Cleanup()

	assert.True(t, cache.Has(ctx, "live"))
	assert.False(t, cache.Has(ctx, "dead"))
}

func TestCacheEntry_Expired(t *testing.T) {
	t.Parallel()

	assert.False(t, (&engine.CacheEntry{}).Expired(), "zero expiry never expires")
	assert.False(t, (&engine.CacheEntry{ExpiresAt: time.Now().Add(time.Hour)}).Expired())
	assert.True(t, (&engine.CacheEntry{ExpiresAt: time.Now().Add(-time.Hour)}).Expired())
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := engine.NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", &engine.CacheEntry{Data: []byte("x")}))

	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, engine.ErrCacheDisabled)
	assert.False(t, cache.Has(ctx, "key"))
	assert.NoError(t, cache.Delete(ctx, "key"))
	assert.NoError(t, cache.Clear(ctx))
}

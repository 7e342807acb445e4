package formcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisCache(client, time.Minute)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "sunshine-radiology")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, cache.Set(ctx, "sunshine-radiology", `{"slug":"sunshine-radiology"}`))

	got, err := cache.Get(ctx, "sunshine-radiology")
	require.NoError(t, err)
	assert.Equal(t, `{"slug":"sunshine-radiology"}`, got)
}

func TestRedisCache_KeysAreScopedBySlug(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alpha", "a"))
	assert.True(t, mr.Exists("form:alpha"))

	_, err := cache.Get(ctx, "beta")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_SetAppliesTTL(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alpha", "a"))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "alpha")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_Invalidate(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alpha", "a"))
	require.NoError(t, cache.Invalidate(ctx, "alpha"))

	_, err := cache.Get(ctx, "alpha")
	assert.ErrorIs(t, err, ErrMiss)

	// Invalidating an absent key is not an error
	assert.NoError(t, cache.Invalidate(ctx, "missing"))
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	cache := NopCache{}

	assert.NoError(t, cache.Set(ctx, "alpha", "a"))
	_, err := cache.Get(ctx, "alpha")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, cache.Invalidate(ctx, "alpha"))
}

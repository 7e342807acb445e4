package formcache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when the requested key is not cached
var ErrMiss = errors.New("cache miss")

const keyPrefix = "form:"

// Cache stores rendered form definitions keyed by brand slug
type Cache interface {
	Get(ctx context.Context, slug string) (string, error)
	Set(ctx context.Context, slug string, payload string) error
	Invalidate(ctx context.Context, slug string) error
}

// RedisCache is a Cache backed by redis
type RedisCache struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a redis-backed form cache
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{c: c, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, slug string) (string, error) {
	val, err := r.c.Get(ctx, keyPrefix+slug).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, slug string, payload string) error {
	return r.c.Set(ctx, keyPrefix+slug, payload, r.ttl).Err()
}

func (r *RedisCache) Invalidate(ctx context.Context, slug string) error {
	return r.c.Del(ctx, keyPrefix+slug).Err()
}

// NopCache is used when redis is not configured
type NopCache struct{}

func (NopCache) Get(ctx context.Context, slug string) (string, error) { return "", ErrMiss }
func (NopCache) Set(ctx context.Context, slug string, payload string) error {
	return nil
}
func (NopCache) Invalidate(ctx context.Context, slug string) error { return nil }

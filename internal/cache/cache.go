// Package cache is a thin JSON layer over Redis for read-heavy dashboard
// queries. The portal runs fine without Redis: a nil *Cache is a valid
// receiver and every method degrades to a miss or a no-op, so callers
// never branch on whether caching is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how stale a cached dashboard read can get.
const DefaultTTL = 5 * time.Minute

// ErrMiss is returned by GetJSON when the key is absent (or the cache is
// disabled). Callers fall through to the database on it.
var ErrMiss = errors.New("cache: miss")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr. An empty addr disables caching and
// returns nil, which all methods accept.
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: pinging redis at %s: %w", addr, err)
	}
	return &Cache{client: client, ttl: DefaultTTL}, nil
}

// GetJSON reads key and unmarshals it into dest. Returns ErrMiss when the
// key is absent or the cache is disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) error {
	if c == nil {
		return ErrMiss
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cache: getting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache: decoding %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals value and stores it under key with the default TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: setting %s: %w", key, err)
	}
	return nil
}

// Invalidate drops keys after a write that makes them stale.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: invalidating: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

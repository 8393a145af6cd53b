// Package cache keeps fetched cartography in Redis so repeated lookups do
// not round-trip to the positioning platform. Entries honour the configured
// max age and can be dropped wholesale when the SDK invalidates its cache.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wayfarerhq/mapbridge/logger"
)

const keyPrefix = "cartography:"

// Cartography is a JSON blob cache with a shared TTL.
type Cartography struct {
	client redis.UniversalClient
	log    *zap.SugaredLogger

	mu  sync.RWMutex
	ttl time.Duration
}

// NewCartography creates a cache with the given initial max age. A zero max
// age disables expiry.
func NewCartography(client redis.UniversalClient, maxAge time.Duration) *Cartography {
	return &Cartography{
		client: client,
		log:    logger.GetLogger().Named("cartography_cache"),
		ttl:    maxAge,
	}
}

// SetMaxAge changes the TTL applied to future writes.
func (c *Cartography) SetMaxAge(maxAge time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = maxAge
}

func (c *Cartography) maxAge() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ttl
}

// Get unmarshals the cached value for key into dest. The second return is
// false on a miss; cache failures are logged and treated as misses so the
// caller falls through to the platform.
func (c *Cartography) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnw("Cartography cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warnw("Dropping undecodable cache entry", "key", key, "error", err)
		_ = c.client.Del(ctx, keyPrefix+key).Err()
		return false
	}
	return true
}

// Set stores value under key with the current max age. Failures are logged,
// never surfaced: the cache is an optimization, not a dependency.
func (c *Cartography) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warnw("Unmarshalable cache value", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.maxAge()).Err(); err != nil {
		c.log.Warnw("Cartography cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops every cartography entry.
func (c *Cartography) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

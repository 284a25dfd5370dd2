// Package redis provides a session cache backed by a Redis server.
//
// Use it instead of the in-process cache when multiple instances share
// the same session database:
//
//	cache, err := redis.NewCache("redis://localhost:6379/0", core.CacheConfig{TTL: 5 * time.Minute})
//	// ...
//	tipon.New(tipon.Config{CacheAdapter: cache, ...})
package redis

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/lborres/tipon/core"
)

const keyPrefix = "tipon:session:"

// Cache implements core.CacheWithStats on top of a Redis client.
// Entries expire server-side via the configured TTL, so a restart of
// the application never leaves stale sessions behind.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration

	hits    int64
	misses  int64
	sets    int64
	deletes int64
}

// NewCache connects to the Redis server at url (redis:// form) and
// verifies the connection with a ping before returning.
func NewCache(url string, config core.CacheConfig) (*Cache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Get(tokenHash string) (*core.Session, error) {
	ctx := context.Background()

	raw, err := c.client.Get(ctx, keyPrefix+tokenHash).Bytes()
	if err == goredis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}
	if err != nil {
		return nil, err
	}

	session := &core.Session{}
	if err := json.Unmarshal(raw, session); err != nil {
		// Corrupt entry, drop it and treat as a miss.
		c.client.Del(ctx, keyPrefix+tokenHash)
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	// TokenHash is excluded from JSON, restore it from the key.
	session.TokenHash = tokenHash

	atomic.AddInt64(&c.hits, 1)
	return session, nil
}

func (c *Cache) Set(tokenHash string, session *core.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := c.client.Set(context.Background(), keyPrefix+tokenHash, raw, c.ttl).Err(); err != nil {
		return err
	}
	atomic.AddInt64(&c.sets, 1)
	return nil
}

func (c *Cache) Delete(tokenHash string) error {
	if err := c.client.Del(context.Background(), keyPrefix+tokenHash).Err(); err != nil {
		return err
	}
	atomic.AddInt64(&c.deletes, 1)
	return nil
}

// Clear removes every cached session. Scans instead of FLUSHDB so a
// shared Redis database is not wiped.
func (c *Cache) Clear() error {
	ctx := context.Background()

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Sets:    atomic.LoadInt64(&c.sets),
		Deletes: atomic.LoadInt64(&c.deletes),
		TTL:     c.ttl,
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

var _ core.CacheWithStats = (*Cache)(nil)

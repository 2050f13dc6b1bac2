// Package rediscache provides a Redis-backed implementation of cache.Cache,
// letting several processes share resolved value pages.
package rediscache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// Config for the Redis cache. Defaults can be loaded via envdecode.
type Config struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// DB index. ENV: REDIS_DB
	DB int `env:"REDIS_DB,default=0"`
	// KeyPrefix for all keys. ENV: CACHE_KEY_PREFIX
	KeyPrefix string `env:"CACHE_KEY_PREFIX,default=inputspec:values:"`
}

// Cache implements cache.Cache on top of Redis.
type Cache struct {
	client    *redis.Client
	keyPrefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewFromEnv builds a Cache using envdecode to populate Config.
func NewFromEnv(ctx context.Context) (*Cache, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decoding redis cache config: %w", err)
	}
	return New(ctx, cfg)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, keyPrefix string) *Cache {
	if keyPrefix == "" {
		keyPrefix = "inputspec:values:"
	}
	return &Cache{client: client, keyPrefix: keyPrefix}
}

// Get returns the stored value. Redis enforces the TTL, so a present key is
// never stale. Backend failures are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("redis cache get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return data, true
}

// Set stores value with the given TTL; zero means no expiration.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		slog.Debug("redis cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		slog.Debug("redis cache delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Clear removes every key under the cache prefix.
func (c *Cache) Clear(ctx context.Context) {
	c.DeletePrefix(ctx, "")
}

// DeletePrefix removes every key starting with prefix and returns how many
// were deleted.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) int {
	keys, err := c.scanKeys(ctx, c.keyPrefix+prefix+"*")
	if err != nil {
		slog.Debug("redis cache scan failed",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		slog.Debug("redis cache delete failed",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return int(n)
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// scanKeys uses SCAN to find all keys matching a pattern.
func (c *Cache) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// Package cache stores converted files in Redis so re-uploading the same
// spreadsheet skips decoding and normalization.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL applies when Config.TTL is not positive.
const DefaultTTL = time.Hour

// Client is the subset of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Config holds Redis cache settings.
type Config struct {
	URL       string
	TTL       time.Duration
	KeyPrefix string
}

// RedisCache implements core.ResultCache.
type RedisCache struct {
	client Client
	ttl    time.Duration
	prefix string
}

// Connect parses the URL, opens a client and verifies it with PING.
func Connect(ctx context.Context, cfg Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	slog.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	return New(client, cfg.TTL, cfg.KeyPrefix), nil
}

// New wraps an existing client.
func New(client Client, ttl time.Duration, prefix string) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

// Get returns a cached result. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) (*core.FileResult, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var result core.FileResult
	if err := json.Unmarshal(value, &result); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return &result, true, nil
}

// Set stores a result for the configured TTL. Failed files are not cached
// so a transient error is not replayed.
func (c *RedisCache) Set(ctx context.Context, key string, result core.FileResult) error {
	if result.Failed() {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection, for health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(k string) string {
	if c.prefix == "" {
		return "convert:" + k
	}
	return c.prefix + ":convert:" + k
}

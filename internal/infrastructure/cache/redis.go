package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "docmeta:llm_cache:"

// RedisCache stores the same JSON envelope as FileCache under a key prefix.
// Redis expiry reclaims space; the envelope timestamp decides visibility.
type RedisCache struct {
	client redis.UniversalClient
	opts   Options
}

func NewRedisCache(client redis.UniversalClient, opts Options) *RedisCache {
	return &RedisCache{client: client, opts: opts.normalize()}
}

// OpenRedis parses a redis:// URL and returns a connected client.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.opts.Logger.Warn("llm_cache_read_failed", "backend", "redis", "key", key, "error", err)
		}
		return "", false
	}

	storedAt, payload, err := decodeEntry(raw)
	if err != nil || c.opts.expired(storedAt) {
		if delErr := c.client.Del(ctx, redisKeyPrefix+key).Err(); delErr != nil {
			c.opts.Logger.Warn("llm_cache_remove_failed", "backend", "redis", "key", key, "error", delErr)
		}
		return "", false
	}
	return payload, true
}

func (c *RedisCache) Set(ctx context.Context, key, payload string) error {
	data, err := encodeEntry(c.opts.Now(), payload)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	ttl := c.opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Prune(ctx context.Context) error {
	removed := 0
	err := c.scan(ctx, func(fullKey string) error {
		raw, err := c.client.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		storedAt, _, decErr := decodeEntry(raw)
		if decErr != nil || c.opts.expired(storedAt) {
			removed++
			return c.client.Del(ctx, fullKey).Err()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis prune: %w", err)
	}
	c.opts.Logger.Info("llm_cache_pruned", "backend", "redis", "removed", removed)
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	err := c.scan(ctx, func(fullKey string) error {
		return c.client.Del(ctx, fullKey).Err()
	})
	if err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

func (c *RedisCache) scan(ctx context.Context, fn func(fullKey string) error) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	return iter.Err()
}

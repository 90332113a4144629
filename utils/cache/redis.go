package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache wraps the redis client. All methods degrade gracefully: a nil
// or unreachable redis never fails the request path, it only skips caching.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redis using the given URL. Returns a cache with
// a nil client when the URL is empty or unparseable, which disables caching.
func NewRedisCache(redisURL string) *RedisCache {
	if redisURL == "" {
		log.Println("REDIS_URL not set, caching disabled")
		return &RedisCache{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, caching disabled: %v", err)
		return &RedisCache{}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable, caching disabled: %v", err)
		return &RedisCache{}
	}

	log.Println("Connected to redis")
	return &RedisCache{client: client}
}

// Enabled reports whether a redis connection is available.
func (c *RedisCache) Enabled() bool {
	return c.client != nil
}

// Get reads a cached JSON value into dest. Returns false on miss or error.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("failed to decode cached value for %s: %v", key, err)
		return false
	}
	return true
}

// Set stores a value as JSON with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("failed to encode value for %s: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("failed to cache %s: %v", key, err)
	}
}

// Exists reports whether a key is present. Returns false when redis is
// unavailable so callers fall through to their authoritative path.
func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	if c.client == nil {
		return false
	}

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("redis EXISTS failed for %s: %v", key, err)
		return false
	}
	return n > 0
}

// SetNX sets key only if it does not exist. Returns true when the key was
// set by this call, and true (proceed) when redis is unavailable so the
// database guards stay authoritative.
func (c *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) bool {
	if c.client == nil {
		return true
	}

	ok, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		log.Printf("redis SETNX failed for %s: %v", key, err)
		return true
	}
	return ok
}

// Delete removes a key.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if c.client == nil {
		return
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("failed to delete cache key %s: %v", key, err)
	}
}

// Close closes the underlying connection.
func (c *RedisCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

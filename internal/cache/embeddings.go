package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long cached embeddings live in redis.
const DefaultTTL = 30 * 24 * time.Hour

// RedisCache implements EmbeddingsCache on a redis instance.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// RedisOption configures the RedisCache.
type RedisOption func(*RedisCache)

// WithTTL sets the entry lifetime. Zero means no expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

// NewRedisCache creates a cache on the given redis address.
func NewRedisCache(addr string, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    DefaultTTL,
		logger: slog.Default().With("component", "embeddings-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached vector, or ErrCacheMiss. Corrupt entries are
// deleted and reported as a miss.
func (c *RedisCache) Get(ctx context.Context, model, contentHash string) ([]float32, error) {
	key := cacheKey(model, contentHash)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache entry; %w", err)
	}

	vector, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("deleting corrupt cache entry",
			"hash", contentHash,
			"model", model,
			"error", err)
		_ = c.client.Del(ctx, key).Err()
		return nil, ErrCacheMiss
	}
	return vector, nil
}

// Set stores a vector.
func (c *RedisCache) Set(ctx context.Context, model, contentHash string, vector []float32) error {
	data, err := encodeVector(vector)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, cacheKey(model, contentHash), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry; %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping verifies the redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// MemoryCache is a map-backed EmbeddingsCache for tests and cache-less
// deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

// Get returns the cached vector, or ErrCacheMiss.
func (c *MemoryCache) Get(_ context.Context, model, contentHash string) ([]float32, error) {
	c.mu.RLock()
	data, ok := c.entries[cacheKey(model, contentHash)]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	return decodeVector(data)
}

// Set stores a vector.
func (c *MemoryCache) Set(_ context.Context, model, contentHash string, vector []float32) error {
	data, err := encodeVector(vector)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[cacheKey(model, contentHash)] = data
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached entries. Test helper.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var (
	_ EmbeddingsCache = (*RedisCache)(nil)
	_ EmbeddingsCache = (*MemoryCache)(nil)
)

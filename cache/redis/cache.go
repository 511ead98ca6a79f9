// Package redis stores Octavia read results in Redis.
//
// Keys and invalidation patterns come from octavia.CachingSender and always
// start with octavia.CacheKeyPrefix. The cache refuses patterns outside that
// namespace so a shared Redis database is never swept beyond the client's keys.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domainerrors "github.com/octavia-db/octavia-go/errors"
	"github.com/octavia-db/octavia-go/octavia"
)

// unlinkBatch is how many scanned keys are unlinked per round trip.
const unlinkBatch = 256

// Config holds Redis connection configuration.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration
}

// Cache implements octavia.Cache on Redis.
type Cache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewCache connects to Redis and verifies the connection.
func NewCache(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, domainerrors.NewConfigurationError("redis unreachable", err)
	}

	return NewFromClient(client, cfg.DefaultTTL), nil
}

// Get returns the cached result for key, or nil, nil when there is none.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores a result. A zero ttl uses the default TTL; results are never
// stored without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		ttl = octavia.DefaultCacheTTL
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeletePattern unlinks every key matching the glob pattern and returns how
// many were removed. Keys are scanned incrementally and unlinked in batches.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	if !strings.HasPrefix(pattern, octavia.CacheKeyPrefix+":") {
		return 0, domainerrors.NewValidationError("pattern outside the octavia key namespace", pattern)
	}

	var removed int64
	batch := make([]string, 0, unlinkBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
		removed += n
		batch = batch[:0]
		return nil
	}

	iter := c.client.Scan(ctx, 0, pattern, unlinkBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

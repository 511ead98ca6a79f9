package redis

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octavia-db/octavia-go/octavia"
)

// NewFromClient wraps an existing go-redis client, e.g. one shared with the
// rest of an application. Closing the returned Cache closes client.
func NewFromClient(client *redis.Client, defaultTTL time.Duration) *Cache {
	return &Cache{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

var _ octavia.Cache = (*Cache)(nil)

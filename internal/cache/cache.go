package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelkov/staybook/internal/destination"
)

// Destination search results stay cached for a week; the supplier's
// city directory changes rarely.
const defaultTTL = 7 * 24 * time.Hour

// Cache wraps a Redis client and provides typed get/set/delete for
// destination search result sets, keyed by normalized query.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with the default 7-day TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// NewCacheWithTTL constructs a Cache with a custom TTL (for tests).
func NewCacheWithTTL(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// key returns the Redis key for the given search query.
func key(query string) string {
	return "dest:" + destination.Normalize(query)
}

// GetSearch retrieves a cached result set for the query.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) GetSearch(ctx context.Context, query string) ([]destination.Projection, error) {
	val, err := c.client.Get(ctx, key(query)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for query %q: %w", query, err)
	}

	var results []destination.Projection
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		return nil, fmt.Errorf("unmarshaling cached results for query %q: %w", query, err)
	}

	return results, nil
}

// SetSearch stores a result set under the query key with the configured TTL.
func (c *Cache) SetSearch(ctx context.Context, query string, results []destination.Projection) error {
	if len(results) == 0 {
		return nil
	}

	b, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling results for query %q: %w", query, err)
	}

	if err := c.client.Set(ctx, key(query), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for query %q: %w", query, err)
	}

	return nil
}

// DeleteSearch removes the cached entry for the given query.
func (c *Cache) DeleteSearch(ctx context.Context, query string) error {
	if err := c.client.Del(ctx, key(query)).Err(); err != nil {
		return fmt.Errorf("cache delete for query %q: %w", query, err)
	}
	return nil
}

package properties

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "properties:search:version"

// Cache is a versioned Redis cache for public search results. Mutations bump
// the version instead of enumerating keys, so stale entries simply expire.
// A nil Cache degrades to calling the loader directly.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key composes the cache key for a filter under the current version.
func (c *Cache) Key(ctx context.Context, filter ListFilter) (string, error) {
	parts := []string{
		"properties", "search",
		filter.Location, filter.PropertyType,
		formatPrice(filter.MinPrice), formatPrice(filter.MaxPrice),
	}
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchListings returns the cached result for key or populates it from the
// loader. Cache failures fall back to the loader.
func (c *Cache) FetchListings(ctx context.Context, key string, loader func(context.Context) ([]Listing, error)) ([]Listing, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached []Listing
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	listings, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(listings); err == nil {
		_ = c.client.Set(ctx, key, encoded, c.ttl).Err()
	}
	return listings, nil
}

// Bump invalidates all cached search results.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}

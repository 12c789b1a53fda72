package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/print24/pricing_api/internal/models"
)

// PriceCache stores computed price breakdowns keyed by the resolution
// dimensions. A stale hit within the TTL window is an accepted trade-off;
// writes to books or modifiers invalidate the affected dimensions.
type PriceCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewPriceCache creates a PriceCache with the configured TTL.
func NewPriceCache(redis *RedisClient, ttl time.Duration) *PriceCache {
	return &PriceCache{redis: redis, ttl: ttl}
}

// key builds the cache key for one resolution context. Absent dimensions
// are encoded as 0 so that pattern invalidation stays uniform.
// Shape: price:{productId}:{segmentId}:{zoneId}
func (c *PriceCache) key(productID, segmentID, zoneID int) string {
	return fmt.Sprintf("price:%d:%d:%d", productID, segmentID, zoneID)
}

// lockKey is the single-flight lock key for one cache key.
func (c *PriceCache) lockKey(productID, segmentID, zoneID int) string {
	return fmt.Sprintf("lock:%s", c.key(productID, segmentID, zoneID))
}

// Get returns the cached breakdown, or (nil, nil) on a miss.
func (c *PriceCache) Get(ctx context.Context, productID, segmentID, zoneID int) (*models.PriceBreakdown, error) {
	raw, err := c.redis.Get(ctx, c.key(productID, segmentID, zoneID))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}

	var breakdown models.PriceBreakdown
	if err := json.Unmarshal([]byte(raw), &breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached breakdown: %w", err)
	}
	return &breakdown, nil
}

// Set stores a breakdown under its dimension key.
func (c *PriceCache) Set(ctx context.Context, productID, segmentID, zoneID int, breakdown *models.PriceBreakdown) error {
	data, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}
	return c.redis.Set(ctx, c.key(productID, segmentID, zoneID), string(data), c.ttl)
}

// TryLock attempts to take the single-flight compute lock for a key.
// Losing the race is harmless: the caller recomputes redundantly.
func (c *PriceCache) TryLock(ctx context.Context, productID, segmentID, zoneID int) (bool, error) {
	return c.redis.SetNX(ctx, c.lockKey(productID, segmentID, zoneID), "1", 5*time.Second)
}

// Unlock releases the single-flight lock.
func (c *PriceCache) Unlock(ctx context.Context, productID, segmentID, zoneID int) error {
	return c.redis.Delete(ctx, c.lockKey(productID, segmentID, zoneID))
}

// Invalidate purges cached breakdowns whose key matches any supplied
// dimension. Nil dimensions are wildcards, so Invalidate(ctx, &p, nil, nil)
// drops every segment/zone combination for product p.
func (c *PriceCache) Invalidate(ctx context.Context, productID, segmentID, zoneID *int) (int, error) {
	pattern := fmt.Sprintf("price:%s:%s:%s", dimPattern(productID), dimPattern(segmentID), dimPattern(zoneID))
	return c.redis.DeleteByPattern(ctx, pattern)
}

func dimPattern(dim *int) string {
	if dim == nil {
		return "*"
	}
	return fmt.Sprintf("%d", *dim)
}

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/codelens/taskhub/internal/domain/analytics"
	"github.com/redis/go-redis/v9"
)

// AnalyticsCache keeps per-owner analytics summaries in Redis for a short
// TTL. Every method tolerates a nil receiver so the cache can simply be left
// unconfigured in deployments without Redis.
type AnalyticsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAnalyticsCache(rdb *redis.Client, ttl time.Duration) *AnalyticsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &AnalyticsCache{rdb: rdb, ttl: ttl}
}

func key(ownerID string) string {
	return "analytics:" + ownerID
}

// Get returns the cached summary for the owner, if any. Cache errors are
// treated as misses, the store is the source of truth.
func (c *AnalyticsCache) Get(ctx context.Context, ownerID string) (analytics.Summary, bool) {
	if c == nil || c.rdb == nil {
		return analytics.Summary{}, false
	}

	raw, err := c.rdb.Get(ctx, key(ownerID)).Bytes()

	if err != nil {
		return analytics.Summary{}, false
	}

	var s analytics.Summary

	if json.Unmarshal(raw, &s) != nil {
		return analytics.Summary{}, false
	}

	return s, true
}

func (c *AnalyticsCache) Set(ctx context.Context, ownerID string, s analytics.Summary) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(s)

	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, key(ownerID), raw, c.ttl).Err()
}

// Invalidate drops the owner's cached summary. Called after any project or
// task mutation by that owner.
func (c *AnalyticsCache) Invalidate(ctx context.Context, ownerID string) {
	if c == nil || c.rdb == nil {
		return
	}

	_ = c.rdb.Del(ctx, key(ownerID)).Err()
}

// internal/baseline/cache.go
package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vitalgraph/vitalgraph/internal/series"
)

// CachedStore is a read-through Redis cache in front of a baseline
// Store. Baseline reads are hot during correlation runs (every user,
// every metric) while writes happen once per refresh window, so cached
// reads with invalidate-on-upsert is enough consistency.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(userID string) string { return fmt.Sprintf("baseline:%s", userID) }

func (c *CachedStore) ReadObservations(ctx context.Context, userID, metricKey string, from, to time.Time) ([]series.OutcomeObservation, error) {
	return c.inner.ReadObservations(ctx, userID, metricKey, from, to)
}

func (c *CachedStore) UpsertBaseline(ctx context.Context, rec Record) error {
	if err := c.inner.UpsertBaseline(ctx, rec); err != nil {
		return err
	}
	// Stale cache entries are worse than a cache miss.
	if err := c.rdb.Del(ctx, cacheKey(rec.UserID)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("invalidating baseline cache for %s: %w", rec.UserID, err)
	}
	return nil
}

func (c *CachedStore) Baselines(ctx context.Context, userID string) ([]Record, error) {
	key := cacheKey(userID)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var records []Record
		if jsonErr := json.Unmarshal(data, &records); jsonErr == nil {
			return records, nil
		}
		// Corrupt entry: fall through to the store and rewrite it.
	} else if err != redis.Nil {
		return nil, fmt.Errorf("reading baseline cache for %s: %w", userID, err)
	}

	records, err := c.inner.Baselines(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
	}
	return records, nil
}

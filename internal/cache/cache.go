// Package cache provides the live-search result cache. Entries are keyed by
// serviceType|normalizedAddress and expire by TTL, so repeated queries for
// the same service near the same address skip the external place search.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// keyPrefix namespaces live-search entries in the shared Redis instance.
const keyPrefix = "janseva:live:"

// Cache is the Redis-backed live-search result cache.
// Distinct keys never contend; no cross-user locking is needed here.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a new cache with the given client and default TTL.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key builds the cache key from the service type and the user's address.
// Both parts are lowercased with whitespace collapsed so that trivially
// different spellings of the same address share an entry.
func Key(serviceType, address string) string {
	return normalize(serviceType) + "|" + normalize(address)
}

// Get returns the entry for the key, or ErrCacheMiss if absent or expired.
// Expiry is Redis TTL-based; there is no background sweep.
func (c *Cache) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	if c == nil || c.rdb == nil {
		return nil, apperrors.ErrCacheMiss
	}

	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrCacheMiss
		}
		return nil, apperrors.NewDataSourceError("cache", err)
	}

	var entry model.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry; treat as a miss so the caller refreshes it.
		_ = c.rdb.Del(ctx, keyPrefix+key).Err()
		return nil, apperrors.ErrCacheMiss
	}

	return &entry, nil
}

// Put stores raw live-search results under the key with the cache TTL.
func (c *Cache) Put(ctx context.Context, key string, places []model.RawPlace) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	entry := model.CacheEntry{
		Key:      key,
		StoredAt: time.Now(),
		Places:   places,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return apperrors.NewDataSourceError("cache", err)
	}
	return nil
}

// Invalidate evicts the key. Called after the pipeline pushes a live-search
// result into the semantic index, so a subsequent identical query reflects
// the just-indexed data instead of the stale raw result.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return apperrors.NewDataSourceError("cache", err)
	}
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Package rowcache mirrors the most recently changed rows into Redis. The
// change watchers write every row they fetch through to this cache, so
// out-of-process consumers can read a JSON snapshot of a row by key without
// touching the database. Rows are never served from here back into the API
// process; the database stays the only read path.
package rowcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// Cache stores JSON-encoded rows keyed by table and row id. A nil Cache is
// valid and disables caching, so callers never need to branch on it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a row cache with the given TTL per entry.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func rowKey(table string, id int64) string {
	return fmt.Sprintf("row:%s:%d", table, id)
}

// Put stores a row. Cache failures are logged and swallowed: the cache is a
// side channel, never the source of truth.
func (c *Cache) Put(ctx context.Context, table string, id int64, row any) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(row)
	if err != nil {
		logger.Warn().Err(err).Str("table", table).Int64("id", id).Msg("Failed to encode row for cache")
		return
	}
	if err := c.client.Set(ctx, rowKey(table, id), data, c.ttl).Err(); err != nil {
		logger.Warn().Err(err).Str("table", table).Int64("id", id).Msg("Failed to cache row")
	}
}

// Invalidate drops a cached row, typically after an update or delete.
func (c *Cache) Invalidate(ctx context.Context, table string, id int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, rowKey(table, id)).Err(); err != nil {
		logger.Warn().Err(err).Str("table", table).Int64("id", id).Msg("Failed to invalidate cached row")
	}
}

package access

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheVersion stamps cached payloads; entries written by an older schema
// read as a miss instead of being reinterpreted.
const cacheVersion = 1

// DefaultCacheTTL bounds how long a resolved role is served without going
// back to the store. A server-side role downgrade is therefore reflected
// within this window at worst.
const DefaultCacheTTL = 5 * time.Minute

type cachedRecord struct {
	Version int    `json:"v"`
	Record  Record `json:"record"`
}

// Cache is the advisory snapshot of the last resolved role per principal.
// It is a fast path only: corrupt, expired or unreadable entries degrade to
// a fresh resolution, never to an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache constructs a Cache. A non-positive ttl falls back to DefaultCacheTTL.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) key(principalID string) string {
	return "access:" + principalID
}

// Read returns the cached record for a principal. The second return value is
// false when the entry is missing, malformed, from another schema version,
// or the read itself failed.
func (c *Cache) Read(ctx context.Context, principalID string) (Record, bool) {
	if c == nil || c.client == nil || principalID == "" {
		return Record{}, false
	}
	raw, err := c.client.Get(ctx, c.key(principalID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("access cache read", slog.Any("error", err))
		}
		return Record{}, false
	}
	var stored cachedRecord
	if err := json.Unmarshal(raw, &stored); err != nil || stored.Version != cacheVersion {
		return Record{}, false
	}
	if stored.Record.PrincipalID != principalID || !stored.Record.Tier.Valid() {
		return Record{}, false
	}
	return stored.Record, true
}

// Write persists the record, overwriting any prior value.
func (c *Cache) Write(ctx context.Context, record Record) {
	if c == nil || c.client == nil || record.PrincipalID == "" {
		return
	}
	data, err := json.Marshal(cachedRecord{Version: cacheVersion, Record: record})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(record.PrincipalID), data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("access cache write", slog.Any("error", err))
	}
}

// Clear drops the cached record for a principal. Idempotent; called on logout.
func (c *Cache) Clear(ctx context.Context, principalID string) {
	if c == nil || c.client == nil || principalID == "" {
		return
	}
	if err := c.client.Del(ctx, c.key(principalID)).Err(); err != nil && !errors.Is(err, redis.Nil) && c.logger != nil {
		c.logger.Warn("access cache clear", slog.Any("error", err))
	}
}

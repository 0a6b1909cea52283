// Package redis keeps the latest GameState snapshot per game in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/statengine/internal/storage"
)

// DefaultKeyPrefix namespaces snapshot keys when none is configured.
const DefaultKeyPrefix = "statengine:snapshot:"

// Connect creates a Redis client from a URL and pings it.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// SnapshotCache stores one hash per game holding its newest snapshot.
type SnapshotCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ storage.SnapshotStore = (*SnapshotCache)(nil)

// NewSnapshotCache returns a cache over client. A zero ttl keeps entries
// until overwritten.
func NewSnapshotCache(client *redis.Client, prefix string, ttl time.Duration) *SnapshotCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SnapshotCache{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key holding gameID's snapshot.
func (c *SnapshotCache) Key(gameID string) string { return c.prefix + gameID }

// saveScript writes the hash only when the incoming tick is not older than
// the cached one, so a late writer never regresses the cache.
var saveScript = redis.NewScript(`
local cur = redis.call("HGET", KEYS[1], "tick")
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call("HSET", KEYS[1], "tick", ARGV[1], "version", ARGV[2], "data", ARGV[3], "saved_at", ARGV[4])
if tonumber(ARGV[5]) > 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[5])
else
  redis.call("PERSIST", KEYS[1])
end
return 1
`)

// Save caches s unless a newer tick is already cached.
func (c *SnapshotCache) Save(ctx context.Context, s storage.Snapshot) error {
	savedAt := s.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	err := saveScript.Run(ctx, c.client, []string{c.Key(s.GameID)},
		strconv.FormatUint(s.Tick, 10),
		s.Version,
		s.Data,
		savedAt.UTC().Format(time.RFC3339Nano),
		c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("caching snapshot for game %s: %w", s.GameID, err)
	}
	return nil
}

// Latest returns the cached snapshot for gameID.
//
// Postcondition: Returns storage.ErrSnapshotNotFound on a cache miss.
func (c *SnapshotCache) Latest(ctx context.Context, gameID string) (storage.Snapshot, error) {
	fields, err := c.client.HGetAll(ctx, c.Key(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return storage.Snapshot{}, fmt.Errorf("reading cached snapshot for game %s: %w", gameID, err)
	}
	if len(fields) == 0 {
		return storage.Snapshot{}, storage.ErrSnapshotNotFound
	}
	tick, err := strconv.ParseUint(fields["tick"], 10, 64)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("decoding cached tick for game %s: %w", gameID, err)
	}
	savedAt, err := time.Parse(time.RFC3339Nano, fields["saved_at"])
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("decoding cached saved_at for game %s: %w", gameID, err)
	}
	return storage.Snapshot{
		GameID:  gameID,
		Tick:    tick,
		Version: fields["version"],
		Data:    []byte(fields["data"]),
		SavedAt: savedAt,
	}, nil
}

// Invalidate drops the cached snapshot for gameID.
func (c *SnapshotCache) Invalidate(ctx context.Context, gameID string) error {
	if err := c.client.Del(ctx, c.Key(gameID)).Err(); err != nil {
		return fmt.Errorf("invalidating snapshot for game %s: %w", gameID, err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hoejeong/internal/adapters/storage"
)

// KeyPrefix namespaces cached snapshots in a shared Redis.
const KeyPrefix = "hoejeong:snapshot:"

// GenerationPrefix namespaces the per-table invalidation counters.
const GenerationPrefix = "hoejeong:snapshot-gen:"

// setIfGeneration writes the snapshot only while the counter still holds the
// generation the reader saw. KEYS: counter, snapshot. ARGV: gen, payload, ttl ms.
var setIfGeneration = redis.NewScript(`
if (redis.call("GET", KEYS[1]) or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// NewRedisClient connects to url and checks the connection with a ping.
// PRE: url is a redis:// or rediss:// URL
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// RedisBackend stores snapshots as JSON, shared by every server process.
type RedisBackend struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisBackend creates a backend over an existing client.
func NewRedisBackend(rdb *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{rdb: rdb, ttl: ClampTTL(ttl)}
}

type cachedSnapshot struct {
	Table   string              `json:"table"`
	Version int64               `json:"version"`
	Rows    []map[string]string `json:"rows"`
}

// Get implements Backend.
func (r *RedisBackend) Get(ctx context.Context, table string) (storage.Snapshot, bool, error) {
	raw, err := r.rdb.Get(ctx, KeyPrefix+table).Bytes()
	if errors.Is(err, redis.Nil) {
		return storage.Snapshot{}, false, nil
	}
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	var c cachedSnapshot
	if err := json.Unmarshal(raw, &c); err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", table, err)
	}
	if c.Rows == nil {
		c.Rows = []map[string]string{}
	}
	return storage.Snapshot{Table: c.Table, Version: c.Version, Rows: c.Rows}, true, nil
}

// Generation implements Backend.
func (r *RedisBackend) Generation(ctx context.Context, table string) (int64, error) {
	gen, err := r.rdb.Get(ctx, GenerationPrefix+table).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration implements Backend.
func (r *RedisBackend) SetIfGeneration(ctx context.Context, snap storage.Snapshot, gen int64) (bool, error) {
	raw, err := json.Marshal(cachedSnapshot{Table: snap.Table, Version: snap.Version, Rows: snap.Rows})
	if err != nil {
		return false, err
	}
	keys := []string{GenerationPrefix + snap.Table, KeyPrefix + snap.Table}
	stored, err := setIfGeneration.Run(ctx, r.rdb, keys, gen, raw, r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("set snapshot %s: %w", snap.Table, err)
	}
	return stored == 1, nil
}

// Invalidate implements Backend. The bump and the delete share one MULTI.
func (r *RedisBackend) Invalidate(ctx context.Context, table string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationPrefix+table)
		pipe.Del(ctx, KeyPrefix+table)
		return nil
	})
	return err
}

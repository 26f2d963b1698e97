// Package lock serializes read-modify-write cycles on a table so two
// submissions for the same ledger cannot interleave.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockBusy means another writer held the lock for the whole wait.
var ErrLockBusy = errors.New("table is being updated, try again")

// DefaultTTL bounds how long a crashed holder can block others.
const DefaultTTL = 30 * time.Second

// Unlock releases a held lock. It is safe to call once.
type Unlock func()

// Locker hands out exclusive locks by key.
type Locker interface {
	// Acquire blocks until key is held, ctx ends, or the locker gives up.
	Acquire(ctx context.Context, key string) (Unlock, error)
}

// TableKey is the lock key guarding a table.
func TableKey(table string) string {
	return "table:" + table
}

// Local is an in-process keyed mutex for single-server deployments.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// Compile-time check that *Local satisfies Locker.
var _ Locker = (*Local)(nil)

// NewLocal creates a keyed mutex that gives up after wait.
// PRE: wait > 0
func NewLocal(wait time.Duration) *Local {
	return &Local{slots: map[string]chan struct{}{}, wait: wait}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Acquire implements Locker.
func (l *Local) Acquire(ctx context.Context, key string) (Unlock, error) {
	ch := l.slot(key)
	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%s: %w", key, ErrLockBusy)
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w: %v", key, ErrLockBusy, ctx.Err())
	}
}

// KeyPrefix namespaces locks in a shared Redis.
const KeyPrefix = "hoejeong:lock:"

// Redis is a distributed lock for deployments running several servers.
type Redis struct {
	client  *redislock.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
}

// Compile-time check that *Redis satisfies Locker.
var _ Locker = (*Redis)(nil)

// NewRedis creates a Redis-backed locker. Locks expire after ttl if never released.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: redislock.New(rdb), ttl: ttl, retries: 50, backoff: 100 * time.Millisecond}
}

// Acquire implements Locker.
func (r *Redis) Acquire(ctx context.Context, key string) (Unlock, error) {
	lk, err := r.client.Obtain(ctx, KeyPrefix+key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(r.backoff), r.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, ErrLockBusy)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				slog.Warn("lock_event", "event", "release_failed", "key", key, "error", err)
			}
		})
	}, nil
}

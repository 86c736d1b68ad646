package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lukehargrove/channelstock-backend/pkg/redis"
)

const defaultItemLockTTL = 30 * time.Second

// Locker hands out per-item locks so only one sync pass touches an item at a
// time.
type Locker interface {
	Acquire(ctx context.Context, itemID uuid.UUID) (ItemLock, error)
}

// ItemLock is one acquired lock. Release is idempotent and never frees a lock
// a later holder re-acquired after TTL expiry.
type ItemLock interface {
	Release(ctx context.Context) error
}

// ErrLockHeld signals the non-blocking acquire lost the race.
var ErrLockHeld = errors.New("item lock already held")

// RedisLocker implements Locker using Redis SETNX + TTL.
type RedisLocker struct {
	store redis.LockStore
	ttl   time.Duration
}

// NewRedisLocker constructs the Redis-backed item locker.
func NewRedisLocker(store redis.LockStore, ttl time.Duration) (*RedisLocker, error) {
	if store == nil {
		return nil, errors.New("redis store required for locker")
	}
	if ttl <= 0 {
		ttl = defaultItemLockTTL
	}
	return &RedisLocker{store: store, ttl: ttl}, nil
}

// Acquire tries to own the item's lock for the configured TTL. It never
// blocks; a held lock comes back as ErrLockHeld.
func (l *RedisLocker) Acquire(ctx context.Context, itemID uuid.UUID) (ItemLock, error) {
	if itemID == uuid.Nil {
		return nil, errors.New("item id is required")
	}
	key := l.store.LockKey(itemID.String())
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &redisItemLock{store: l.store, key: key, owner: owner}, nil
}

type redisItemLock struct {
	store redis.LockStore
	key   string
	owner string
}

// Release frees the lock only if the owner value still matches.
func (l *redisItemLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			l.owner = ""
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		l.owner = ""
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

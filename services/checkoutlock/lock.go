// Package checkoutlock serializes checkout per browsing session so two
// concurrent submissions of the same cart cannot both turn it into orders.
package checkoutlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker acquires an exclusive per-session lock. Unlock must be called by
// the same caller once checkout finishes.
type Locker interface {
	Lock(ctx context.Context, sessionKey string) (unlock func(), err error)
}

// ErrLocked is returned when another checkout currently holds the session.
var ErrLocked = errors.New("checkout already in progress for this session")

// RedisLocker takes a SET NX lock in redis so checkout stays serialized
// even across multiple API instances. The TTL bounds how long a crashed
// holder can wedge a session.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Lock(ctx context.Context, sessionKey string) (func(), error) {
	key := "checkout:lock:" + sessionKey
	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		l.client.Del(context.Background(), key)
	}, nil
}

// LocalLocker is the single-instance fallback used when no redis address
// is configured: one mutex per session key, kept in memory.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) Lock(ctx context.Context, sessionKey string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[sessionKey]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionKey] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be acquired before the context ended
var ErrLockTimeout = errors.New("timed out waiting for shop lock")

// ShopLock serializes catalog imports of the same shop.
// Lock blocks until the key is free or ctx is done; the returned func releases it.
type ShopLock interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

const (
	shopLockKeyPrefix = "orders:import:lock:"
	defaultLockTTL    = 10 * time.Minute
	lockRetryInterval = 100 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisShopLock implements ShopLock with SET NX and a token-checked release.
// The TTL bounds how long a crashed worker can hold the key.
type RedisShopLock struct {
	client        redis.UniversalClient
	keyPrefix     string
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisShopLock creates a Redis-backed shop lock
func NewRedisShopLock(client redis.UniversalClient, ttl time.Duration) *RedisShopLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisShopLock{
		client:        client,
		keyPrefix:     shopLockKeyPrefix,
		ttl:           ttl,
		retryInterval: lockRetryInterval,
	}
}

func (l *RedisShopLock) key(name string) string {
	return l.keyPrefix + name
}

// Lock polls SET NX until it succeeds
func (l *RedisShopLock) Lock(ctx context.Context, name string) (func(), error) {
	key := l.key(name)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, name)
			}
			return nil, fmt.Errorf("failed to acquire shop lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, name)
		case <-ticker.C:
		}
	}
}

func (l *RedisShopLock) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		})
	}
}

var _ ShopLock = (*RedisShopLock)(nil)

// InMemoryShopLock implements ShopLock for a single process
type InMemoryShopLock struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewInMemoryShopLock creates a new in-memory shop lock
func NewInMemoryShopLock() *InMemoryShopLock {
	return &InMemoryShopLock{locks: make(map[string]*keyLock)}
}

// Lock waits on the per-key slot
func (l *InMemoryShopLock) Lock(ctx context.Context, name string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[name]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[name] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(name, kl)
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, name)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.drop(name, kl)
		})
	}, nil
}

func (l *InMemoryShopLock) drop(name string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, name)
	}
}

// Size returns the number of keys currently locked or awaited
func (l *InMemoryShopLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

var _ ShopLock = (*InMemoryShopLock)(nil)

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryShopLock_MutualExclusion(t *testing.T) {
	lock := NewInMemoryShopLock()
	ctx := context.Background()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := lock.Lock(ctx, "Связной")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Equal(t, 0, lock.Size())
}

func TestInMemoryShopLock_IndependentKeys(t *testing.T) {
	lock := NewInMemoryShopLock()
	ctx := context.Background()

	unlockA, err := lock.Lock(ctx, "shop-a")
	require.NoError(t, err)
	defer unlockA()

	ctxB, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	unlockB, err := lock.Lock(ctxB, "shop-b")
	require.NoError(t, err)
	unlockB()
}

func TestInMemoryShopLock_ContextTimeout(t *testing.T) {
	lock := NewInMemoryShopLock()

	unlock, err := lock.Lock(context.Background(), "shop-a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = lock.Lock(ctx, "shop-a")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock()
	assert.Equal(t, 0, lock.Size())

	unlock, err = lock.Lock(context.Background(), "shop-a")
	require.NoError(t, err)
	unlock()
}

func TestRedisShopLock_Defaults(t *testing.T) {
	lock := NewRedisShopLock(nil, 0)

	assert.Equal(t, defaultLockTTL, lock.ttl)
	assert.Equal(t, "orders:import:lock:Связной", lock.key("Связной"))
}

func TestNewShopLock_WithoutClient(t *testing.T) {
	lock := NewShopLock(nil, time.Minute)
	_, ok := lock.(*InMemoryShopLock)
	assert.True(t, ok)
}

func TestClientFactory_Disabled(t *testing.T) {
	client, err := NewClientFactory(config.RedisConfig{Enabled: false}).Connect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestClientFactory_UnreachableFallback(t *testing.T) {
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	f := NewClientFactory(cfg)
	f.pingTimeout = 200 * time.Millisecond
	client, err := f.Connect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)

	strict := NewClientFactory(cfg, WithInMemoryFallback(false))
	strict.pingTimeout = 200 * time.Millisecond
	_, err = strict.Connect(context.Background())
	assert.Error(t, err)
}

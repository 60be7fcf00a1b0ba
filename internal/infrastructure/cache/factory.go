package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ClientFactory opens the shared Redis client used by the shop lock and the token blacklist
type ClientFactory struct {
	cfg                   config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*ClientFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *ClientFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to in-memory state.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *ClientFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewClientFactory creates a new factory
func NewClientFactory(cfg config.RedisConfig, opts ...FactoryOption) *ClientFactory {
	f := &ClientFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect returns a pinged Redis client. A nil client with a nil error means
// Redis is disabled or unreachable with fallback allowed; callers then use in-memory state.
func (f *ClientFactory) Connect(ctx context.Context) (*redis.Client, error) {
	if !f.cfg.Enabled {
		f.logger.Info("Redis disabled, using in-memory lock and token blacklist")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         f.cfg.Addr(),
		Password:     f.cfg.Password,
		DB:           f.cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err == nil {
		f.logger.Info("connected to Redis", zap.String("addr", f.cfg.Addr()))
		return client, nil
	}
	_ = client.Close()

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory lock and token blacklist. "+
		"Imports are then only serialized within this instance.",
		zap.Error(err),
	)
	return nil, nil
}

// NewShopLock picks the Redis lock when a client is available
func NewShopLock(client *redis.Client, ttl time.Duration) ShopLock {
	if client == nil {
		return NewInMemoryShopLock()
	}
	return NewRedisShopLock(client, ttl)
}

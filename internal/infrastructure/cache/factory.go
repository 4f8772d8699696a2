package cache

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/infrastructure/config"
)

// ClosableCostStore is a cost store that owns background resources
type ClosableCostStore interface {
	report.CostStore
	io.Closer
}

// CostStoreFactory creates variant cost stores based on configuration
type CostStoreFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CostStoreFactoryOption is a functional option for configuring the factory
type CostStoreFactoryOption func(*CostStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CostStoreFactoryOption {
	return func(f *CostStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) CostStoreFactoryOption {
	return func(f *CostStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCostStoreFactory creates a new factory
func NewCostStoreFactory(cfg config.RedisConfig, ttl time.Duration, opts ...CostStoreFactoryOption) *CostStoreFactory {
	f := &CostStoreFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based cost store
func (f *CostStoreFactory) CreateRedisStore() (ClosableCostStore, error) {
	store, err := NewRedisCostStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cost store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory cost store
func (f *CostStoreFactory) CreateInMemoryStore() ClosableCostStore {
	return NewInMemoryCostStore(f.ttl)
}

// CreateStore uses Redis when it is enabled and reachable, and the in-memory
// store otherwise. With fallback disabled an unreachable Redis is an error.
func (f *CostStoreFactory) CreateStore() (ClosableCostStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory variant cost store", zap.Duration("ttl", f.ttl))
		return f.CreateInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis variant cost store", zap.String("addr", f.redisConfig.RedisAddr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for variant costs but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory variant cost store. "+
		"Costs will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}

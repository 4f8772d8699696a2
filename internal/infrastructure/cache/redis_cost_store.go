package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/report"
)

const (
	defaultCostKeyPrefix = "hc:variant-cost:"

	// noCostMarker is stored for variants known to have no cost
	noCostMarker = "none"

	scanBatchSize = 500
)

// RedisCostStore implements report.CostStore using Redis
// Suitable when several dashboard instances should share one cost cache
type RedisCostStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCostStore connects to Redis and creates a cost store
func NewRedisCostStore(cfg RedisConfig, ttl time.Duration) (*RedisCostStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCostStoreWithClient(client, "", ttl), nil
}

// NewRedisCostStoreWithClient creates a store with an existing Redis client
func NewRedisCostStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCostStore {
	if keyPrefix == "" {
		keyPrefix = defaultCostKeyPrefix
	}
	return &RedisCostStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisCostStore) key(variantID int64) string {
	return s.keyPrefix + strconv.FormatInt(variantID, 10)
}

// Get returns the cached cost and whether the variant was cached at all
func (s *RedisCostStore) Get(ctx context.Context, variantID int64) (*decimal.Decimal, bool, error) {
	val, err := s.client.Get(ctx, s.key(variantID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read variant cost: %w", err)
	}
	if val == noCostMarker {
		return nil, true, nil
	}

	cost, err := decimal.NewFromString(val)
	if err != nil {
		// treat a corrupt entry as a miss so it gets refreshed
		return nil, false, nil
	}
	return &cost, true, nil
}

// Set caches a cost, nil included
func (s *RedisCostStore) Set(ctx context.Context, variantID int64, cost *decimal.Decimal) error {
	val := noCostMarker
	if cost != nil {
		val = cost.String()
	}
	if err := s.client.Set(ctx, s.key(variantID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache variant cost: %w", err)
	}
	return nil
}

// Clear deletes every key under the store's prefix
func (s *RedisCostStore) Clear(ctx context.Context) error {
	return s.scan(ctx, func(keys []string) error {
		return s.client.Del(ctx, keys...).Err()
	})
}

// MissingVariants lists variants cached with the no-cost marker, in ascending order
func (s *RedisCostStore) MissingVariants(ctx context.Context) ([]int64, error) {
	missing := make([]int64, 0)
	err := s.scan(ctx, func(keys []string) error {
		vals, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		for i, v := range vals {
			if str, ok := v.(string); !ok || str != noCostMarker {
				continue
			}
			id, err := strconv.ParseInt(strings.TrimPrefix(keys[i], s.keyPrefix), 10, 64)
			if err == nil {
				missing = append(missing, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

// scan walks the prefix with SCAN and hands each non-empty batch to fn
func (s *RedisCostStore) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.keyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan variant costs: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return fmt.Errorf("failed to process variant costs: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the Redis client
func (s *RedisCostStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisCostStore) GetClient() *redis.Client {
	return s.client
}

var _ report.CostStore = (*RedisCostStore)(nil)

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisTestStore connects to HC_TEST_REDIS_ADDR, skipping when it is unset
func redisTestStore(t *testing.T) *RedisCostStore {
	t.Helper()
	addr := os.Getenv("HC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HC_TEST_REDIS_ADDR not set, skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable at %s: %v", addr, err)
	}

	prefix := "hc:test:" + uuid.NewString() + ":"
	store := NewRedisCostStoreWithClient(client, prefix, time.Minute)
	t.Cleanup(func() {
		_ = store.Clear(context.Background())
		_ = store.Close()
	})
	return store
}

func TestRedisCostStore(t *testing.T) {
	store := redisTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	price := decimal.RequireFromString("4.20")
	require.NoError(t, store.Set(ctx, 1, &price))
	require.NoError(t, store.Set(ctx, 3, nil))
	require.NoError(t, store.Set(ctx, 2, nil))

	cost, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, cost)
	assert.True(t, price.Equal(*cost))

	cost, ok, err = store.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, cost)

	missing, err := store.MissingVariants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, missing)

	ttl, err := store.GetClient().TTL(ctx, store.key(1)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCostStoreWithClient_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	store := NewRedisCostStoreWithClient(client, "", time.Minute)
	assert.Equal(t, "hc:variant-cost:42", store.key(42))
}

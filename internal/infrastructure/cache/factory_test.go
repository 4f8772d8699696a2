package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/infrastructure/config"
)

func TestCostStoreFactory_CreateStore(t *testing.T) {
	t.Run("redis disabled uses memory", func(t *testing.T) {
		f := NewCostStoreFactory(config.RedisConfig{Enabled: false}, time.Hour, WithLogger(zap.NewNop()))
		store, err := f.CreateStore()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryCostStore{}, store)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewCostStoreFactory(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, time.Hour)
		store, err := f.CreateStore()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryCostStore{}, store)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewCostStoreFactory(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, time.Hour,
			WithInMemoryFallback(false))
		store, err := f.CreateStore()
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

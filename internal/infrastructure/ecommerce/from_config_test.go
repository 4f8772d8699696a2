package ecommerce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/infrastructure/config"
)

func TestShopifyConfigFrom(t *testing.T) {
	sc := ShopifyConfigFrom(config.ShopifyConfig{StoreDomain: "homecooks.myshopify.com", AccessToken: "shpat"})
	assert.Equal(t, ShopifyDefaultAPIVersion, sc.APIVersion)
	assert.Equal(t, shopifyDefaultTimeout, sc.TimeoutSeconds)
	assert.Equal(t, float64(shopifyDefaultRequestsPerSecond), sc.RequestsPerSecond)

	sc = ShopifyConfigFrom(config.ShopifyConfig{
		StoreDomain:       "homecooks.myshopify.com",
		AccessToken:       "shpat",
		APIVersion:        "2025-01",
		TimeoutSeconds:    5,
		RequestsPerSecond: 1,
		Burst:             1,
	})
	assert.Equal(t, "2025-01", sc.APIVersion)
	assert.Equal(t, 5, sc.TimeoutSeconds)
	assert.Equal(t, 1, sc.Burst)
}

func TestLinnworksConfigFrom(t *testing.T) {
	lc := LinnworksConfigFrom(config.LinnworksConfig{AppID: "app", AppSecret: "secret", InstallToken: "tok", PageSize: 100, PageDelay: time.Second})
	assert.Equal(t, "app", lc.ApplicationID)
	assert.Equal(t, linnworksDefaultAuthURL, lc.AuthURL)
	assert.Equal(t, 100, lc.PageSize)
	assert.Equal(t, time.Second, lc.PageDelay)
}

func TestNewFulfillmentPlatform(t *testing.T) {
	t.Run("without credentials", func(t *testing.T) {
		p, err := NewFulfillmentPlatform(config.LinnworksConfig{AppID: "app"}, zap.NewNop())
		require.NoError(t, err)

		_, err = p.SearchProcessedOrders(context.Background(), time.Now(), time.Now())
		assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)
		_, err = p.GetOrdersByID(context.Background(), []string{"a"})
		assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)
	})

	t.Run("with credentials", func(t *testing.T) {
		p, err := NewFulfillmentPlatform(config.LinnworksConfig{AppID: "app", AppSecret: "secret", InstallToken: "tok"}, nil)
		require.NoError(t, err)
		assert.IsType(t, &LinnworksAdapter{}, p)
	})
}

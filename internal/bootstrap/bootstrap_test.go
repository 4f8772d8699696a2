package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/infrastructure/config"
	"github.com/homecooks/profitability/internal/infrastructure/ecommerce"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Shopify.StoreDomain = "homecooks.myshopify.com"
	cfg.Shopify.AccessToken = "shpat_test"
	cfg.Cache.CostTTL = time.Hour
	cfg.Telemetry.ServiceName = "profitability-test"
	return cfg
}

func TestNewPlatforms(t *testing.T) {
	t.Run("shopify is required", func(t *testing.T) {
		_, err := NewPlatforms(&config.Config{}, zap.NewNop())
		assert.ErrorIs(t, err, config.ErrShopifyNotConfigured)
	})

	t.Run("optional platforms degrade", func(t *testing.T) {
		p, err := NewPlatforms(testConfig(), zap.NewNop())
		require.NoError(t, err)

		assert.NotNil(t, p.Shopify)
		assert.IsType(t, ecommerce.UnconfiguredFulfillment{}, p.Fulfillment)
		assert.Nil(t, p.Subscriptions)
		assert.NotNil(t, p.Sheets)
	})

	t.Run("all configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.Linnworks = config.LinnworksConfig{AppID: "app", AppSecret: "secret", InstallToken: "tok"}
		cfg.Appstle.APIKey = "key"

		p, err := NewPlatforms(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &ecommerce.LinnworksAdapter{}, p.Fulfillment)
		assert.NotNil(t, p.Subscriptions)
	})
}

func TestNewServices(t *testing.T) {
	cfg := testConfig()
	p, err := NewPlatforms(cfg, zap.NewNop())
	require.NoError(t, err)

	costs, err := NewCosts(cfg, p.Shopify, nil, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = costs.Close() })

	svc, err := NewServices(cfg, p, costs, nil, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, svc.D2C)
	assert.NotNil(t, svc.Retail)
	assert.NotNil(t, svc.GoPuff)
	assert.NotNil(t, svc.Refresh)
	assert.False(t, svc.Subscriptions.Available())

	_, err = svc.D2C.ListOrders(context.Background(), reportQuery())
	assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)
}

func TestNewServices_BadManualOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Retail.ManualOrders = []config.ManualOrderConfig{{Store: "Selfridges", Date: "yesterday"}}
	p, err := NewPlatforms(cfg, zap.NewNop())
	require.NoError(t, err)
	costs, err := NewCosts(cfg, p.Shopify, nil, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = costs.Close() })

	_, err = NewServices(cfg, p, costs, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestNewTelemetry_Disabled(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), testConfig(), "test", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tel.Tracer.IsEnabled())
	assert.False(t, tel.Meter.IsEnabled())
	assert.NotNil(t, tel.Pipeline)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func reportQuery() reportapp.DashboardQuery {
	return reportapp.DashboardQuery{
		Start:      time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local),
		End:        time.Date(2025, 9, 7, 0, 0, 0, 0, time.Local),
		IncludeAll: true,
	}
}

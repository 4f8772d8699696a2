package ecommerce

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/infrastructure/config"
)

// ShopifyConfigFrom maps the application configuration onto the adapter's,
// keeping adapter defaults for anything left unset
func ShopifyConfigFrom(c config.ShopifyConfig) *ShopifyConfig {
	sc := NewShopifyConfig(c.StoreDomain, c.AccessToken, c.APIVersion)
	if c.TimeoutSeconds > 0 {
		sc.TimeoutSeconds = c.TimeoutSeconds
	}
	if c.RequestsPerSecond > 0 {
		sc.RequestsPerSecond = c.RequestsPerSecond
	}
	if c.Burst > 0 {
		sc.Burst = c.Burst
	}
	return sc
}

// LinnworksConfigFrom maps the application configuration onto the adapter's
func LinnworksConfigFrom(c config.LinnworksConfig) *LinnworksConfig {
	lc := NewLinnworksConfig(c.AppID, c.AppSecret, c.InstallToken)
	if c.AuthURL != "" {
		lc.AuthURL = c.AuthURL
	}
	if c.PageSize > 0 {
		lc.PageSize = c.PageSize
	}
	if c.PageDelay > 0 {
		lc.PageDelay = c.PageDelay
	}
	return lc
}

// NewFulfillmentPlatform returns the Linnworks adapter, or a platform that
// answers every call with integration.ErrPlatformNotConfigured when no
// credentials are configured
func NewFulfillmentPlatform(c config.LinnworksConfig, logger *zap.Logger) (integration.FulfillmentPlatform, error) {
	if !c.Configured() {
		if logger != nil {
			logger.Warn("Linnworks credentials missing, warehouse dashboards are disabled")
		}
		return UnconfiguredFulfillment{}, nil
	}
	adapter, err := NewLinnworksAdapter(LinnworksConfigFrom(c), WithLinnworksLogger(logger))
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

// UnconfiguredFulfillment stands in for a warehouse without credentials
type UnconfiguredFulfillment struct{}

// Authenticate implements integration.FulfillmentPlatform
func (UnconfiguredFulfillment) Authenticate(context.Context) error {
	return integration.ErrPlatformNotConfigured
}

// SearchProcessedOrders implements integration.FulfillmentPlatform
func (UnconfiguredFulfillment) SearchProcessedOrders(context.Context, time.Time, time.Time) ([]integration.ProcessedOrder, error) {
	return nil, integration.ErrPlatformNotConfigured
}

// GetOrdersByID implements integration.FulfillmentPlatform
func (UnconfiguredFulfillment) GetOrdersByID(context.Context, []string) ([]integration.OrderDetail, error) {
	return nil, integration.ErrPlatformNotConfigured
}

var _ integration.FulfillmentPlatform = UnconfiguredFulfillment{}

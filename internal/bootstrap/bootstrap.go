// Package bootstrap builds the platform adapters and report services from
// configuration. The server and the commands share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/infrastructure/billing"
	"github.com/homecooks/profitability/internal/infrastructure/cache"
	"github.com/homecooks/profitability/internal/infrastructure/config"
	"github.com/homecooks/profitability/internal/infrastructure/ecommerce"
	"github.com/homecooks/profitability/internal/infrastructure/sheets"
	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

// Platforms holds the upstream adapters
type Platforms struct {
	Shopify       *ecommerce.ShopifyAdapter
	Fulfillment   integration.FulfillmentPlatform
	Subscriptions integration.SubscriptionPlatform // nil without an Appstle key
	Sheets        integration.SalesSheetSource
}

// NewPlatforms creates every adapter. Shopify is required; Linnworks and
// Appstle degrade to not configured.
func NewPlatforms(cfg *config.Config, log *zap.Logger) (*Platforms, error) {
	if err := cfg.RequireShopify(); err != nil {
		return nil, err
	}
	shopify, err := ecommerce.NewShopifyAdapter(ecommerce.ShopifyConfigFrom(cfg.Shopify), ecommerce.WithShopifyLogger(log))
	if err != nil {
		return nil, fmt.Errorf("shopify: %w", err)
	}
	fulfillment, err := ecommerce.NewFulfillmentPlatform(cfg.Linnworks, log)
	if err != nil {
		return nil, fmt.Errorf("linnworks: %w", err)
	}
	subscriptions, err := billing.NewSubscriptionPlatform(cfg.Appstle, log)
	if err != nil {
		return nil, fmt.Errorf("appstle: %w", err)
	}
	sheetSource, err := sheets.NewGoPuffSheetSource(sheets.GoPuffSheetConfigFrom(cfg.GoPuff), log)
	if err != nil {
		return nil, fmt.Errorf("gopuff sheet: %w", err)
	}
	return &Platforms{
		Shopify:       shopify,
		Fulfillment:   fulfillment,
		Subscriptions: subscriptions,
		Sheets:        sheetSource,
	}, nil
}

// Costs is the variant cost cache and its backing store
type Costs struct {
	*report.CostingService
	store cache.ClosableCostStore
}

// Close releases the backing store
func (c *Costs) Close() error {
	return c.store.Close()
}

// NewCosts creates the costing service over Redis, or memory when Redis is
// disabled or unreachable
func NewCosts(cfg *config.Config, lookup report.VariantCostLookup, metrics *telemetry.PipelineMetrics, log *zap.Logger) (*Costs, error) {
	store, err := cache.NewCostStoreFactory(cfg.Redis, cfg.Cache.CostTTL, cache.WithLogger(log)).CreateStore()
	if err != nil {
		return nil, err
	}
	metered := reportapp.NewMeteredCostStore(store, metrics)
	return &Costs{
		CostingService: report.NewCostingService(lookup, metered),
		store:          store,
	}, nil
}

// Services holds the report services
type Services struct {
	D2C           *reportapp.D2CService
	Retail        *reportapp.RetailService
	GoPuff        *reportapp.GoPuffService
	Subscriptions *reportapp.SubscriptionService
	Refresh       *reportapp.RefreshService
}

// NewServices creates the report services over the platforms
func NewServices(cfg *config.Config, p *Platforms, costs *Costs, metrics *telemetry.PipelineMetrics, log *zap.Logger) (*Services, error) {
	manual, err := reportapp.ManualOrdersFrom(cfg.Retail.ManualOrders)
	if err != nil {
		return nil, err
	}
	common := []reportapp.Option{reportapp.WithLogger(log), reportapp.WithMetrics(metrics)}

	d2c := reportapp.NewD2CService(p.Shopify, p.Fulfillment, costs, nil,
		append(common, reportapp.WithCacheTTL(cfg.Cache.OrdersTTL))...)
	retailSvc := reportapp.NewRetailService(p.Fulfillment, reportapp.RetailCostModelFrom(cfg.Retail.CostModel), manual, nil,
		append(common, reportapp.WithCacheTTL(cfg.Cache.RetailTTL))...)
	subscriptions := reportapp.NewSubscriptionService(p.Subscriptions,
		append(common, reportapp.WithCacheTTL(cfg.Cache.SubscriptionTTL))...)

	return &Services{
		D2C:           d2c,
		Retail:        retailSvc,
		GoPuff:        reportapp.NewGoPuffService(p.Sheets, common...),
		Subscriptions: subscriptions,
		Refresh:       reportapp.NewRefreshService(costs, d2c, retailSvc, subscriptions, common...),
	}, nil
}

// Telemetry holds the trace and metric providers
type Telemetry struct {
	Tracer   *telemetry.TracerProvider
	Meter    *telemetry.MeterProvider
	Pipeline *telemetry.PipelineMetrics
}

// NewTelemetry creates the providers. Both are no-ops when telemetry is
// disabled.
func NewTelemetry(ctx context.Context, cfg *config.Config, version string, log *zap.Logger) (*Telemetry, error) {
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	pipeline, err := telemetry.NewPipelineMetrics(mp.Meter("profitability/pipeline"))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	return &Telemetry{Tracer: tp, Meter: mp, Pipeline: pipeline}, nil
}

// Shutdown flushes and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.Tracer.Shutdown(ctx), t.Meter.Shutdown(ctx))
}

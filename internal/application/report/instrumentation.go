package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

// Upstream platform labels
const (
	platformShopify   = "shopify"
	platformLinnworks = "linnworks"
	platformAppstle   = "appstle"
	platformSheets    = "sheets"
)

// observeUpstream records the duration and outcome of an upstream call
func observeUpstream(ctx context.Context, m *telemetry.PipelineMetrics, platform, operation string, started time.Time, err error) {
	m.RecordUpstreamCall(ctx, platform, operation, time.Since(started), err)
}

// MeteredCostStore counts cost cache hits and misses
type MeteredCostStore struct {
	report.CostStore
	metrics *telemetry.PipelineMetrics
}

// NewMeteredCostStore wraps a cost store with cache lookup metrics
func NewMeteredCostStore(store report.CostStore, metrics *telemetry.PipelineMetrics) *MeteredCostStore {
	return &MeteredCostStore{CostStore: store, metrics: metrics}
}

// Get records whether the variant was cached
func (s *MeteredCostStore) Get(ctx context.Context, variantID int64) (*decimal.Decimal, bool, error) {
	cost, ok, err := s.CostStore.Get(ctx, variantID)
	if err == nil {
		s.metrics.RecordCostLookup(ctx, ok)
	}
	return cost, ok, err
}

var _ report.CostStore = (*MeteredCostStore)(nil)

package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/scheduler"
)

// CostCache is the variant cost cache cleared by a refresh
type CostCache interface {
	ClearCache(ctx context.Context) error
}

// RefreshService clears every cache and rebuilds the default D2C dashboard
type RefreshService struct {
	costs         CostCache
	d2c           *D2CService
	retail        *RetailService
	subscriptions *SubscriptionService
	opts          serviceOptions
}

// NewRefreshService creates the refresh job. Nil services are skipped.
func NewRefreshService(costs CostCache, d2c *D2CService, retail *RetailService, subscriptions *SubscriptionService, opts ...Option) *RefreshService {
	return &RefreshService{
		costs:         costs,
		d2c:           d2c,
		retail:        retail,
		subscriptions: subscriptions,
		opts:          applyOptions(0, opts),
	}
}

// Refresh clears the cost cache, the upstream snapshots and the subscription
// metrics, then warms the default dashboard
func (s *RefreshService) Refresh(ctx context.Context) (err error) {
	started := s.opts.now()
	defer func() {
		finished := s.opts.now()
		s.opts.metrics.RecordRefresh(ctx, finished.Sub(started), finished, err)
	}()

	log := logger.L(ctx)
	if s.costs != nil {
		if err := s.costs.ClearCache(ctx); err != nil {
			return fmt.Errorf("failed to clear cost cache: %w", err)
		}
	}
	if s.d2c != nil {
		s.d2c.InvalidateSnapshots()
	}
	if s.retail != nil {
		s.retail.InvalidateSnapshots()
	}
	if s.subscriptions != nil {
		s.subscriptions.Invalidate()
	}
	log.Info("Cleared dashboard caches")

	if s.d2c == nil {
		return nil
	}
	start, end := DefaultWindow(started)
	resp, err := s.d2c.GetDashboard(ctx, DashboardQuery{Start: start, End: end, IncludeAll: true})
	if err != nil {
		return fmt.Errorf("failed to warm dashboard: %w", err)
	}
	log.Info("Warmed D2C dashboard",
		zap.Int("orders", resp.Stats.Processed),
		zap.Duration("elapsed", s.opts.now().Sub(started)),
	)
	return nil
}

var _ scheduler.RefreshJob = (*RefreshService)(nil)

package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/subscription"
	"github.com/homecooks/profitability/internal/infrastructure/cache"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

const (
	defaultSubscriptionTTL = 5 * time.Minute

	// subscriptionPageSize is the contract page size requested from the platform
	subscriptionPageSize = 500

	// maxCancelledPages bounds the cancelled contract scan
	maxCancelledPages = 10
)

// SubscriptionService reports subscriber movement for the current week
type SubscriptionService struct {
	platform  integration.SubscriptionPlatform
	high      *subscription.HighWaterMark
	snapshots *cache.SnapshotCache
	opts      serviceOptions
}

// NewSubscriptionService creates the subscription metrics service. A nil
// platform means the subscription app is not configured.
func NewSubscriptionService(platform integration.SubscriptionPlatform, opts ...Option) *SubscriptionService {
	o := applyOptions(defaultSubscriptionTTL, opts)
	return &SubscriptionService{
		platform:  platform,
		high:      &subscription.HighWaterMark{},
		snapshots: cache.NewSnapshotCache(o.ttl),
		opts:      o,
	}
}

// Available reports whether a subscription platform is configured
func (s *SubscriptionService) Available() bool {
	return s.platform != nil
}

// Metrics returns active subscribers plus this week's new and cancelled
// contracts, cached briefly. IsNewHigh belongs to the snapshot and repeats
// on every read until it expires.
func (s *SubscriptionService) Metrics(ctx context.Context) (*SubscriptionResponse, error) {
	if s.platform == nil {
		return nil, integration.ErrPlatformNotConfigured
	}
	return cache.Load(ctx, s.snapshots, keySubscriptions, s.opts.ttl, s.compute)
}

func (s *SubscriptionService) compute(ctx context.Context) (*SubscriptionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "subscriptions", "metrics", telemetry.SpanAttrPlatform, platformAppstle)
	defer span.End()

	active, err := s.listAll(ctx, integration.SubscriptionStatusActive, 0)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	cancelled, err := s.listAll(ctx, integration.SubscriptionStatusCancelled, maxCancelledPages)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.opts.now()
	m := subscription.Compute(active, cancelled, now)
	m.AllTimeHigh, m.IsNewHigh = s.high.Observe(m.ActiveSubscribers)

	logger.L(ctx).Info("Computed subscription metrics",
		zap.Int("active", m.ActiveSubscribers),
		zap.Int("new_this_week", m.NewThisWeek),
		zap.Int("cancelled_this_week", m.CancelledThisWeek),
		zap.Bool("new_high", m.IsNewHigh),
	)
	return &SubscriptionResponse{Available: true, Metrics: m, FetchedAt: now}, nil
}

// listAll pages through contracts until an empty or short page. maxPages of
// zero means no page limit.
func (s *SubscriptionService) listAll(ctx context.Context, status integration.SubscriptionStatus, maxPages int) ([]integration.Subscription, error) {
	out := make([]integration.Subscription, 0)
	for page := 0; maxPages == 0 || page < maxPages; page++ {
		started := time.Now()
		subs, err := s.platform.ListSubscriptions(ctx, status, page, subscriptionPageSize)
		observeUpstream(ctx, s.opts.metrics, platformAppstle, "list_subscriptions", started, err)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s subscriptions (page %d): %w", status, page, err)
		}
		out = append(out, subs...)
		if len(subs) < subscriptionPageSize {
			break
		}
	}
	return out, nil
}

// Invalidate drops the cached metrics. The all-time high is kept.
func (s *SubscriptionService) Invalidate() {
	s.snapshots.Flush()
}

package report

import (
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

// Cache key prefixes of the snapshot cache
const (
	keyProcessedOrders = "linnworks:processed:"
	keyCommerceOrders  = "shopify:orders:"
	keyRetailOrders    = "retail:orders:"
	keySubscriptions   = "appstle:metrics"
)

// Channel labels used in metrics and logs
const (
	channelD2C    = "d2c"
	channelRetail = "retail"
)

// serviceOptions holds the collaborators every service accepts
type serviceOptions struct {
	logger  *zap.Logger
	metrics *telemetry.PipelineMetrics
	now     func() time.Time
	ttl     time.Duration
}

// Option configures a report service
type Option func(*serviceOptions)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records pipeline metrics
func WithMetrics(metrics *telemetry.PipelineMetrics) Option {
	return func(o *serviceOptions) {
		o.metrics = metrics
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCacheTTL sets how long upstream snapshots are kept
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *serviceOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func applyOptions(defaultTTL time.Duration, opts []Option) serviceOptions {
	o := serviceOptions{
		logger: zap.NewNop(),
		now:    time.Now,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

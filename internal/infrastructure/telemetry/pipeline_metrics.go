package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcome values for AttrOutcome
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// PipelineMetrics instruments the dashboard pipeline: upstream API calls,
// the variant cost cache, processed orders and the daily refresh.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	upstreamRequests *Counter
	upstreamDuration *Histogram
	costLookups      *Counter
	ordersProcessed  *Counter
	ordersSkipped    *Counter
	missingCosts     *Counter
	refreshRuns      *Counter
	refreshDuration  *Histogram
	lastRefresh      *FloatGauge
	periodRevenue    *FloatGauge
}

// NewPipelineMetrics registers the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	pm := &PipelineMetrics{}
	var err error

	if pm.upstreamRequests, err = NewCounter(meter,
		"hc_upstream_requests_total", "Upstream API calls by platform and outcome", "{requests}"); err != nil {
		return nil, err
	}
	if pm.upstreamDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "hc_upstream_request_duration_seconds",
		Description: "Upstream API call duration",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if pm.costLookups, err = NewCounter(meter,
		"hc_cost_cache_lookups_total", "Variant cost cache lookups by result", "{lookups}"); err != nil {
		return nil, err
	}
	if pm.ordersProcessed, err = NewCounter(meter,
		"hc_orders_processed_total", "Orders folded into dashboards by channel", "{orders}"); err != nil {
		return nil, err
	}
	if pm.ordersSkipped, err = NewCounter(meter,
		"hc_orders_skipped_total", "Orders dropped for lacking a dispatch date", "{orders}"); err != nil {
		return nil, err
	}
	if pm.missingCosts, err = NewCounter(meter,
		"hc_missing_costs_total", "Line items without a variant cost", "{items}"); err != nil {
		return nil, err
	}
	if pm.refreshRuns, err = NewCounter(meter,
		"hc_refresh_runs_total", "Daily refresh runs by outcome", "{runs}"); err != nil {
		return nil, err
	}
	if pm.refreshDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "hc_refresh_duration_seconds",
		Description: "Daily refresh duration",
		Unit:        "s",
		Boundaries:  RefreshDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if pm.lastRefresh, err = NewFloatGauge(meter,
		"hc_refresh_last_success_timestamp", "Unix time of the last successful refresh", "s"); err != nil {
		return nil, err
	}
	if pm.periodRevenue, err = NewFloatGauge(meter,
		"hc_period_revenue", "Net revenue of the last computed dashboard by period", "{GBP}"); err != nil {
		return nil, err
	}

	return pm, nil
}

func outcomeOf(err error) attribute.KeyValue {
	if err != nil {
		return AttrOutcome.String(OutcomeError)
	}
	return AttrOutcome.String(OutcomeSuccess)
}

// RecordUpstreamCall records one upstream call and its latency.
func (pm *PipelineMetrics) RecordUpstreamCall(ctx context.Context, platform, operation string, d time.Duration, err error) {
	if pm == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrPlatform.String(platform), AttrOperation.String(operation), outcomeOf(err)}
	pm.upstreamRequests.Inc(ctx, attrs...)
	pm.upstreamDuration.RecordDuration(ctx, d, attrs...)
}

// RecordCostLookup counts a cost cache hit or miss.
func (pm *PipelineMetrics) RecordCostLookup(ctx context.Context, hit bool) {
	if pm == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	pm.costLookups.Inc(ctx, AttrCache.String(result))
}

// RecordOrders counts orders processed and skipped for a channel (d2c, retail).
func (pm *PipelineMetrics) RecordOrders(ctx context.Context, channel string, processed, skipped int) {
	if pm == nil {
		return
	}
	if processed > 0 {
		pm.ordersProcessed.Add(ctx, int64(processed), AttrChannel.String(channel))
	}
	if skipped > 0 {
		pm.ordersSkipped.Add(ctx, int64(skipped), AttrChannel.String(channel))
	}
}

// RecordMissingCosts counts line items priced without a cost.
func (pm *PipelineMetrics) RecordMissingCosts(ctx context.Context, n int) {
	if pm == nil || n <= 0 {
		return
	}
	pm.missingCosts.Add(ctx, int64(n))
}

// RecordRefresh records a refresh run. Successful runs also move the
// last-success gauge to finishedAt.
func (pm *PipelineMetrics) RecordRefresh(ctx context.Context, d time.Duration, finishedAt time.Time, err error) {
	if pm == nil {
		return
	}
	pm.refreshRuns.Inc(ctx, outcomeOf(err))
	pm.refreshDuration.RecordDuration(ctx, d, outcomeOf(err))
	if err == nil {
		pm.lastRefresh.Record(ctx, float64(finishedAt.Unix()))
	}
}

// RecordPeriodRevenue publishes the net revenue of a freshly computed period.
func (pm *PipelineMetrics) RecordPeriodRevenue(ctx context.Context, period string, revenue float64) {
	if pm == nil {
		return
	}
	pm.periodRevenue.Record(ctx, revenue, AttrPeriod.String(period))
}

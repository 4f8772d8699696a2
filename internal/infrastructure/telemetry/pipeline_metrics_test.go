package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func newTestMetrics(t *testing.T) (*telemetry.PipelineMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := telemetry.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return pm, reader
}

func sumFor(t *testing.T, m metricdata.Metrics, kv attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(kv.Key); ok && v == kv.Value {
			total += dp.Value
		}
	}
	return total
}

func TestNewPipelineMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewPipelineMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, pm)
}

func TestPipelineMetrics_NilReceiver(t *testing.T) {
	var pm *telemetry.PipelineMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		pm.RecordUpstreamCall(ctx, "shopify", "list_orders", time.Second, nil)
		pm.RecordCostLookup(ctx, true)
		pm.RecordOrders(ctx, "d2c", 3, 1)
		pm.RecordMissingCosts(ctx, 2)
		pm.RecordRefresh(ctx, time.Second, time.Now(), nil)
		pm.RecordPeriodRevenue(ctx, "mtd", 10)
	})
}

func TestPipelineMetrics_Records(t *testing.T) {
	pm, reader := newTestMetrics(t)
	ctx := context.Background()

	pm.RecordUpstreamCall(ctx, "shopify", "list_orders", 200*time.Millisecond, nil)
	pm.RecordUpstreamCall(ctx, "linnworks", "search", time.Second, assert.AnError)
	pm.RecordCostLookup(ctx, true)
	pm.RecordCostLookup(ctx, true)
	pm.RecordCostLookup(ctx, false)
	pm.RecordOrders(ctx, "d2c", 12, 2)
	pm.RecordOrders(ctx, "d2c", 0, 0)
	pm.RecordMissingCosts(ctx, 4)
	pm.RecordRefresh(ctx, 40*time.Second, time.Unix(1_760_000_000, 0), nil)
	pm.RecordPeriodRevenue(ctx, "mtd", 1234.5)

	metrics := collect(t, reader)

	upstream := metrics["hc_upstream_requests_total"]
	assert.Equal(t, int64(1), sumFor(t, upstream, telemetry.AttrOutcome.String(telemetry.OutcomeError)))
	assert.Equal(t, int64(1), sumFor(t, upstream, telemetry.AttrPlatform.String("shopify")))

	lookups := metrics["hc_cost_cache_lookups_total"]
	assert.Equal(t, int64(2), sumFor(t, lookups, telemetry.AttrCache.String("hit")))
	assert.Equal(t, int64(1), sumFor(t, lookups, telemetry.AttrCache.String("miss")))

	assert.Equal(t, int64(12), sumFor(t, metrics["hc_orders_processed_total"], telemetry.AttrChannel.String("d2c")))
	assert.Equal(t, int64(2), sumFor(t, metrics["hc_orders_skipped_total"], telemetry.AttrChannel.String("d2c")))
	missing, ok := metrics["hc_missing_costs_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, missing.DataPoints, 1)
	assert.Equal(t, int64(4), missing.DataPoints[0].Value)

	gauge, ok := metrics["hc_refresh_last_success_timestamp"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, float64(1_760_000_000), gauge.DataPoints[0].Value)

	_, ok = metrics["hc_period_revenue"]
	assert.True(t, ok)
}

func TestPipelineMetrics_FailedRefreshKeepsLastSuccess(t *testing.T) {
	pm, reader := newTestMetrics(t)
	pm.RecordRefresh(context.Background(), time.Second, time.Now(), assert.AnError)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, metrics["hc_refresh_runs_total"], telemetry.AttrOutcome.String(telemetry.OutcomeError)))
	_, ok := metrics["hc_refresh_last_success_timestamp"]
	assert.False(t, ok)
}

package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/homecooks/profitability/internal/infrastructure/cache"
	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

func lookupsByResult(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "hc_cost_cache_lookups_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(telemetry.AttrCache)
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestMeteredCostStore_RecordsLookups(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	metrics, err := telemetry.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	inner := cache.NewInMemoryCostStore(time.Hour)
	t.Cleanup(func() { _ = inner.Close() })
	store := NewMeteredCostStore(inner, metrics)

	cost := dec("4.20")
	require.NoError(t, store.Set(ctx, 11, &cost))
	require.NoError(t, store.Set(ctx, 12, nil))

	got, ok, err := store.Get(ctx, 11)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, cost.Equal(*got))

	_, ok, err = store.Get(ctx, 12)
	require.NoError(t, err)
	assert.True(t, ok, "a missing cost is still a cache hit")

	_, ok, err = store.Get(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, map[string]int64{"hit": 2, "miss": 1}, lookupsByResult(t, reader))
}

func TestMeteredCostStore_NilMetrics(t *testing.T) {
	inner := cache.NewInMemoryCostStore(time.Hour)
	t.Cleanup(func() { _ = inner.Close() })
	store := NewMeteredCostStore(inner, nil)

	_, ok, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

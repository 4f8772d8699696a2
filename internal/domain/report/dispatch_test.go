package report

import (
	"testing"
	"time"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processedOrder(ref, service string, processed *time.Time) integration.ProcessedOrder {
	return integration.ProcessedOrder{
		PkOrderID:         "pk-" + ref,
		ReferenceNum:      ref,
		ProcessedOn:       processed,
		PostalServiceName: service,
		FullName:          "Jane Doe",
		TotalCharge:       dec("42.50"),
		ItemCount:         3,
	}
}

func TestBuildDispatchIndex(t *testing.T) {
	processed := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	index := BuildDispatchIndex([]integration.ProcessedOrder{
		processedOrder("#11454306681209", "DPD", &processed),
		processedOrder("#1042", "Royal Mail", &processed),
		processedOrder("", "DPD", &processed),
	})

	tests := []struct {
		name  string
		key   string
		found bool
	}{
		{"raw reference", "#11454306681209", true},
		{"cleaned reference", "11454306681209", true},
		{"order name reference", "#1042", true},
		{"cleaned order name", "1042", true},
		{"unknown", "999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := index[tt.key]
			assert.Equal(t, tt.found, ok)
		})
	}

	info := index["11454306681209"]
	require.NotNil(t, info)
	assert.Equal(t, "DPD", info.ShippingMethod)
	assert.Equal(t, "Jane Doe", info.CustomerName)
	assert.Equal(t, 3, info.NumItems)
	assert.True(t, info.TotalCharge.Equal(dec("42.50")))
}

func TestDispatchIndex_Lookup(t *testing.T) {
	byID := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	byName := time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)
	index := BuildDispatchIndex([]integration.ProcessedOrder{
		processedOrder("11454306681209", "DPD", &byID),
		processedOrder("#1042", "DPD", &byName),
	})

	t.Run("by id", func(t *testing.T) {
		info := index.Lookup(11454306681209, "#9999")
		require.NotNil(t, info)
		assert.Equal(t, byID, *info.ProcessedDate)
	})

	t.Run("by order name", func(t *testing.T) {
		info := index.Lookup(1, "#1042")
		require.NotNil(t, info)
		assert.Equal(t, byName, *info.ProcessedDate)
	})

	t.Run("missing", func(t *testing.T) {
		assert.Nil(t, index.Lookup(2, "#2000"))
	})

	t.Run("empty index", func(t *testing.T) {
		assert.Nil(t, DispatchIndex(nil).Lookup(11454306681209, "#1042"))
	})
}

func TestShopifyOrderIDs(t *testing.T) {
	ids := ShopifyOrderIDs([]integration.ProcessedOrder{
		processedOrder("300", "DPD", nil),
		processedOrder("#100", "DPD", nil),
		processedOrder("300", "DPD", nil),
		processedOrder("AMZ-1", "DPD", nil),
		processedOrder("200", "DPD", nil),
	})
	assert.Equal(t, []int64{100, 200, 300}, ids)
}

func TestFilterD2CAndRetail(t *testing.T) {
	orders := []integration.ProcessedOrder{
		processedOrder("1", "DPD Next Day", nil),
		processedOrder("2", "No Shipping Required", nil),
		processedOrder("3", "Royal Mail", nil),
	}

	d2c := FilterD2C(orders)
	retail := FilterRetail(orders)

	require.Len(t, d2c, 2)
	require.Len(t, retail, 1)
	assert.Equal(t, "2", retail[0].ReferenceNum)
}

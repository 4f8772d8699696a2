package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecooks/profitability/internal/domain/report"
)

func TestRenderOrdersCSV(t *testing.T) {
	customer := int64(77)
	rows := []report.OrderRow{{
		SentOutAt:             day(2025, 9, 15),
		Weekday:               "Monday",
		Week:                  "2025-W38",
		OrderName:             "#1001",
		CustomerID:            &customer,
		CustomerName:          "Jane Doe, Esq",
		OrderID:               1001,
		SKUCount:              1,
		TotalUnits:            2,
		BoxType:               report.BoxTypeSmall,
		BoxMultiplier:         1,
		GrossItemValue:        dec("20"),
		NetRevenue:            dec("20"),
		COGS:                  dec("6"),
		Contribution:          dec("1.336"),
		GrossMarginPct:        dec("70"),
		ContributionMarginPct: dec("6.68"),
		Currency:              "GBP",
		IsFirstOrder:          true,
	}}

	data, err := RenderOrdersCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, orderColumns, records[0])

	r := records[1]
	require.Len(t, r, len(orderColumns))
	assert.Equal(t, "2025-09-15", r[0])
	assert.Equal(t, "Jane Doe, Esq", r[5], "commas survive quoting")
	assert.Equal(t, "true", r[6])
	assert.Equal(t, "20.00", r[13])
	assert.Equal(t, "1.34", r[18])
	assert.Equal(t, "6.7", r[20])
}

func TestRenderOrdersCSV_Empty(t *testing.T) {
	data, err := RenderOrdersCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(data, []byte("\n")), "header only")
}

func TestOrdersCSVName(t *testing.T) {
	assert.Equal(t, "d2c_orders_2025-09-03_2025-09-17.csv", OrdersCSVName(WindowResponse{Start: "2025-09-03", End: "2025-09-17"}))
}

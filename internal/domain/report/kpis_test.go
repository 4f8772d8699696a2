package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricsFor(week, weekday, net, contribution string, units int) OrderMetrics {
	return OrderMetrics{
		SentOutWeek:    week,
		SentOutWeekday: weekday,
		TotalUnits:     units,
		GrossItemValue: dec(net).Add(dec("1.00")),
		TotalDiscounts: dec("1.00"),
		NetRevenue:     dec(net),
		COGS:           dec("2.00"),
		PackagingTotal: dec("12.66"),
		Contribution:   dec(contribution),
	}
}

func TestFilterByWeekday(t *testing.T) {
	orders := []OrderMetrics{
		{SentOutWeekday: "Monday"},
		{SentOutWeekday: "Tuesday"},
		{SentOutWeekday: "Thursday"},
	}

	tests := []struct {
		name     string
		filter   DayFilter
		expected int
	}{
		{"all overrides", DayFilter{IncludeAll: true}, 3},
		{"monday and thursday", DayFilter{IncludeMonday: true, IncludeThursday: true}, 2},
		{"monday only", DayFilter{IncludeMonday: true}, 1},
		{"nothing", DayFilter{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, FilterByWeekday(orders, tt.filter), tt.expected)
		})
	}
}

func TestCalculateKPIs(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		k := CalculateKPIs(nil)
		assert.Equal(t, 0, k.TotalOrders)
		assert.True(t, k.NetRevenue.IsZero())
		assert.True(t, k.AvgContributionMargin.IsZero())
	})

	t.Run("totals", func(t *testing.T) {
		a := metricsFor("2025-W38", "Monday", "40.00", "10.00", 4)
		a.MissingCostCount = 1
		b := metricsFor("2025-W38", "Thursday", "60.00", "20.00", 6)

		k := CalculateKPIs([]OrderMetrics{a, b})
		assert.Equal(t, 2, k.TotalOrders)
		assert.Equal(t, 10, k.TotalUnits)
		assert.True(t, k.NetRevenue.Equal(dec("100.00")))
		assert.True(t, k.TotalDiscounts.Equal(dec("2.00")))
		assert.True(t, k.TotalCOGS.Equal(dec("4.00")))
		assert.True(t, k.TotalPackaging.Equal(dec("25.32")))
		assert.True(t, k.TotalContribution.Equal(dec("30.00")))
		assert.True(t, k.AvgContributionMargin.Equal(dec("30")))
		assert.Equal(t, 1, k.MissingCostsCount)
	})
}

func TestWeeklySummary(t *testing.T) {
	orders := []OrderMetrics{
		metricsFor("2025-W39", "Monday", "10.00", "1.00", 1),
		metricsFor("2025-W38", "Thursday", "20.00", "5.00", 2),
		metricsFor("2025-W38", "Monday", "30.00", "6.00", 3),
		metricsFor("2025-W38", "Monday", "10.00", "2.00", 1),
		metricsFor("2025-W38", "Friday", "0", "-12.66", 1),
	}

	summary := WeeklySummary(orders)
	require.Len(t, summary.Rows, 4)

	assert.Equal(t, "2025-W38", summary.Rows[0].Week)
	assert.Equal(t, "Monday", summary.Rows[0].Weekday)
	assert.Equal(t, 2, summary.Rows[0].Orders)
	assert.Equal(t, 4, summary.Rows[0].Units)
	assert.True(t, summary.Rows[0].NetRevenue.Equal(dec("40.00")))
	assert.True(t, summary.Rows[0].ContributionMarginPct.Equal(dec("20")))

	assert.Equal(t, "Thursday", summary.Rows[1].Weekday)
	assert.Equal(t, "Friday", summary.Rows[2].Weekday)
	assert.True(t, summary.Rows[2].ContributionMarginPct.IsZero())
	assert.Equal(t, "2025-W39", summary.Rows[3].Week)

	pivot := summary.Pivot()
	require.Len(t, pivot, 2)
	assert.Equal(t, "2025-W38", pivot[0].Week)
	assert.True(t, pivot[0].Metrics["Monday_orders"].Equal(dec("2")))
	assert.True(t, pivot[0].Metrics["Thursday_net_revenue"].Equal(dec("20.00")))
	assert.True(t, pivot[0].Metrics["Thursday_contribution_margin_pct"].Equal(dec("25")))
	_, hasTuesday := pivot[0].Metrics["Tuesday_orders"]
	assert.False(t, hasTuesday)
}

func TestWeeklyKPIs(t *testing.T) {
	orders := []OrderMetrics{
		metricsFor("2025-W03", "Monday", "30.00", "10.00", 1),
		metricsFor("2025-W03", "Thursday", "70.00", "20.00", 1),
		metricsFor("2025-W01", "Monday", "0", "-5.00", 1),
	}

	weeks := WeeklyKPIs(orders)
	require.Len(t, weeks, 2)

	assert.Equal(t, "2025-W01", weeks[0].Week)
	assert.True(t, weeks[0].Margin.IsZero())
	assert.Equal(t, "30 Dec - 5 Jan", weeks[0].DateRange)

	w := weeks[1]
	assert.Equal(t, "13 Jan - 19 Jan", w.DateRange)
	assert.Equal(t, 2, w.Orders)
	assert.True(t, w.Revenue.Equal(dec("100.00")))
	assert.True(t, w.Profit.Equal(dec("30.00")))
	assert.True(t, w.Margin.Equal(dec("30")))
	assert.True(t, w.AOV.Equal(dec("50")))
	assert.True(t, w.Discounts.Equal(dec("2.00")))
}

func TestWeekDateRange(t *testing.T) {
	tests := []struct {
		week     string
		expected string
	}{
		{"2025-W03", "13 Jan - 19 Jan"},
		{"2025-W38", "15 Sep - 21 Sep"},
		{"2026-W01", "29 Dec - 4 Jan"},
		{"bad", ""},
		{"2025-Wxx", ""},
	}

	for _, tt := range tests {
		t.Run(tt.week, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeekDateRange(tt.week))
		})
	}
}

func TestOrderRows(t *testing.T) {
	id := int64(42)
	m := metricsFor("2025-W38", "Monday", "20.00", "5.00", 2)
	m.OrderName = "#1001"
	m.CustomerID = &id
	m.SentOutAt = time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	m.BoxType = BoxTypeSmall
	m.LineItems = []LineItemMetrics{{SKU: "A"}}

	rows := OrderRows([]OrderMetrics{m})
	require.Len(t, rows, 1)
	assert.Equal(t, "#1001", rows[0].OrderName)
	assert.Equal(t, "Monday", rows[0].Weekday)
	assert.Equal(t, &id, rows[0].CustomerID)
	assert.True(t, rows[0].NetRevenue.Equal(dec("20.00")))
}

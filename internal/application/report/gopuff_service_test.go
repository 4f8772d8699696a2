package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
)

func summaryTable() *integration.SheetTable {
	rows := make([][]string, 32)
	for i := range rows {
		rows[i] = make([]string, 11)
	}
	rows[1][0] = "Latest sales day: 09/15/2025"
	rows[2][0] = "SKU of the day\nChicken Pie\n12 sold"
	rows[5][0] = "Top seller this week\nBeef Pie\nsomething\n40 sold"
	rows[11][0] = "All-time top seller\nChicken Pie\n900 sold"
	rows[19][3] = "Chicken Pie"
	rows[19][10] = "900 sold"
	rows[20][3] = "Beef Pie"
	rows[20][10] = "450 sold"
	return &integration.SheetTable{Header: []string{"Go Puff dashboard"}, Rows: rows}
}

func rawSalesTable() *integration.SheetTable {
	return &integration.SheetTable{
		Header: []string{"Product Name", "09/15/2025", "09/16/2025", "Notes", "09/08/2025"},
		Rows: [][]string{
			{"Chicken Pie", "3", "5", "restocked", "2"},
			{"Beef Pie", "0", "2", "", "1"},
		},
	}
}

func TestGoPuffService_Dashboard(t *testing.T) {
	svc := NewGoPuffService(fakeSheets{summary: summaryTable(), raw: rawSalesTable()}, WithClock(fixedNow))

	resp, err := svc.Dashboard(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, "15/09/2025", resp.Summary.WeekCommencing)
	assert.Equal(t, "Chicken Pie", resp.Summary.SKUOfDay.Product)
	assert.Equal(t, "40", resp.Summary.WeeklyTop.Sold)
	assert.Len(t, resp.Summary.AllProducts, 2)

	assert.Equal(t, "2025-09-16", resp.LatestDate)
	assert.Equal(t, 7, resp.Today.TotalUnits)
	assert.Equal(t, 2, resp.Today.SKUsWithSales)
	require.Len(t, resp.TodaySales, 2)
	assert.Equal(t, "Chicken Pie", resp.TodaySales[0].Product)
	assert.InDelta(t, 71.4, resp.TodaySales[0].Percentage, 1e-9)

	require.NotNil(t, resp.MonthlyTop)
	assert.Equal(t, "September 2025", resp.MonthlyTop.Month)
	assert.Equal(t, 10, resp.MonthlyTop.Total)

	assert.Equal(t, "This Week", resp.Weekly.Label)
	assert.Equal(t, 10, resp.Weekly.TotalUnits)
	assert.Equal(t, 2, resp.Weekly.SKUCount)
}

func TestGoPuffService_PreviousWeek(t *testing.T) {
	svc := NewGoPuffService(fakeSheets{summary: summaryTable(), raw: rawSalesTable()}, WithClock(fixedNow))

	resp, err := svc.Dashboard(context.Background(), -1)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Weekly.TotalUnits)
	assert.Equal(t, "1 week(s) ago", resp.Weekly.Label)
}

func TestGoPuffService_Errors(t *testing.T) {
	t.Run("future week", func(t *testing.T) {
		svc := NewGoPuffService(fakeSheets{summary: summaryTable(), raw: rawSalesTable()})
		_, err := svc.Dashboard(context.Background(), 1)
		assert.ErrorIs(t, err, report.ErrInvalidWeekOffset)
	})

	t.Run("sheet unavailable", func(t *testing.T) {
		svc := NewGoPuffService(fakeSheets{err: integration.ErrPlatformUnavailable})
		_, err := svc.Dashboard(context.Background(), 0)
		assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
	})

	t.Run("empty sheets", func(t *testing.T) {
		svc := NewGoPuffService(fakeSheets{summary: &integration.SheetTable{}, raw: &integration.SheetTable{}}, WithClock(fixedNow))
		resp, err := svc.Dashboard(context.Background(), 0)
		require.NoError(t, err)
		assert.Nil(t, resp.MonthlyTop)
		assert.Empty(t, resp.LatestDate)
		assert.Equal(t, "N/A", resp.Summary.WeekCommencing)
	})
}

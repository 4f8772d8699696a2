package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPeriodWindows(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		mtd       Window
		lastMonth Window
		lfl       Window
		ytdLFL    Window
	}{
		{
			name:      "mid month",
			now:       time.Date(2025, 9, 17, 14, 30, 0, 0, time.UTC),
			mtd:       Window{day(2025, 9, 1), day(2025, 9, 17)},
			lastMonth: Window{day(2025, 8, 1), day(2025, 8, 17)},
			lfl:       Window{day(2024, 9, 1), day(2024, 9, 17)},
			ytdLFL:    Window{day(2024, 1, 1), day(2024, 9, 17)},
		},
		{
			name:      "january wraps to december",
			now:       day(2025, 1, 15),
			mtd:       Window{day(2025, 1, 1), day(2025, 1, 15)},
			lastMonth: Window{day(2024, 12, 1), day(2024, 12, 15)},
			lfl:       Window{day(2024, 1, 1), day(2024, 1, 15)},
			ytdLFL:    Window{day(2024, 1, 1), day(2024, 1, 15)},
		},
		{
			name:      "last month clamped",
			now:       day(2025, 3, 31),
			mtd:       Window{day(2025, 3, 1), day(2025, 3, 31)},
			lastMonth: Window{day(2025, 2, 1), day(2025, 2, 28)},
			lfl:       Window{day(2024, 3, 1), day(2024, 3, 31)},
			ytdLFL:    Window{day(2024, 1, 1), day(2024, 3, 31)},
		},
		{
			name:      "leap day",
			now:       day(2024, 2, 29),
			mtd:       Window{day(2024, 2, 1), day(2024, 2, 29)},
			lastMonth: Window{day(2024, 1, 1), day(2024, 1, 29)},
			lfl:       Window{day(2023, 2, 1), day(2023, 2, 28)},
			ytdLFL:    Window{day(2023, 1, 1), day(2023, 2, 28)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPeriodWindows(tt.now)
			assert.Equal(t, tt.mtd, p.MTD)
			assert.Equal(t, tt.lastMonth, p.LastMonth)
			assert.Equal(t, tt.lfl, p.LFL)
			assert.Equal(t, tt.ytdLFL, p.YTDLFL)
			assert.Equal(t, day(tt.now.Year(), 1, 1), p.YTD.Start)
			assert.Equal(t, tt.mtd.End, p.YTD.End)
			assert.Equal(t, tt.ytdLFL.Start, p.Span().Start)
		})
	}
}

func TestWindow(t *testing.T) {
	w, err := NewWindow(time.Date(2025, 9, 1, 15, 0, 0, 0, time.UTC), day(2025, 9, 17))
	require.NoError(t, err)

	assert.True(t, w.Contains(time.Date(2025, 9, 1, 0, 0, 1, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2025, 9, 17, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 8, 31, 23, 59, 0, 0, time.UTC)))

	assert.Equal(t, "Sep 1-17", w.MonthLabel())
	assert.Equal(t, "Sep 2025 1-17", w.YearLabel())
	assert.Equal(t, "2025-09-01..2025-09-17", w.Key())
	assert.Equal(t, time.Date(2025, 9, 17, 23, 59, 59, 0, time.UTC), w.EndOfDay())

	_, err = NewWindow(day(2025, 9, 18), day(2025, 9, 17))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestVariance(t *testing.T) {
	v := Variance(dec("120"), dec("100"))
	assert.True(t, v.HasBase)
	assert.True(t, v.Diff.Equal(dec("20")))
	assert.True(t, v.Pct.Equal(dec("20")))

	v = Variance(dec("50"), dec("0"))
	assert.False(t, v.HasBase)
	assert.True(t, v.Diff.Equal(dec("50")))
	assert.True(t, v.Pct.IsZero())

	v = Variance(dec("80"), dec("-10"))
	assert.False(t, v.HasBase)
}

func TestMarginAndOrderDelta(t *testing.T) {
	d := MarginDelta(dec("25.5"), dec("20"))
	require.NotNil(t, d)
	assert.True(t, d.Equal(dec("5.5")))
	assert.Nil(t, MarginDelta(dec("25"), dec("0")))

	o := OrderDelta(12, 10)
	require.NotNil(t, o)
	assert.Equal(t, 2, *o)
	assert.Nil(t, OrderDelta(5, 0))
}

func TestD2CPeriodMetrics(t *testing.T) {
	orders := []OrderMetrics{
		metricsFor("2025-W38", "Monday", "40.00", "10.00", 1),
		metricsFor("2025-W38", "Monday", "60.00", "15.00", 1),
	}

	p := D2CPeriodMetrics(orders)
	assert.Equal(t, 2, p.Orders)
	assert.True(t, p.Revenue.Equal(dec("100.00")))
	assert.True(t, p.Profit.Equal(dec("25.00")))
	assert.True(t, p.MarginPct.Equal(dec("25")))
	assert.True(t, p.COGS.Equal(dec("4.00")))

	empty := D2CPeriodMetrics(nil)
	assert.True(t, empty.MarginPct.IsZero())
}

func TestOrdersInWindow(t *testing.T) {
	w := Window{Start: day(2025, 9, 1), End: day(2025, 9, 7)}
	orders := []OrderMetrics{
		{OrderID: 1, SentOutAt: time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)},
		{OrderID: 2, SentOutAt: day(2025, 9, 8)},
	}
	in := OrdersInWindow(orders, w)
	require.Len(t, in, 1)
	assert.Equal(t, int64(1), in[0].OrderID)
}

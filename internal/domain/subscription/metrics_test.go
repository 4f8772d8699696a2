package subscription

import (
	"testing"
	"time"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/stretchr/testify/assert"
)

func at(y int, m time.Month, d, h, mi int) *time.Time {
	t := time.Date(y, m, d, h, mi, 0, 0, time.UTC)
	return &t
}

func TestCalendarWeek(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		start time.Time
	}{
		{"wednesday", time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC), time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2025, 9, 14, 8, 0, 0, 0, time.UTC), time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)},
		{"saturday", time.Date(2025, 9, 20, 23, 0, 0, 0, time.UTC), time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := CalendarWeek(tt.now)
			assert.Equal(t, tt.start, w.Start)
			assert.Equal(t, time.Date(2025, 9, 20, 23, 59, 59, 0, time.UTC), w.End)
		})
	}
}

func TestCompute(t *testing.T) {
	now := time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)
	active := []integration.Subscription{
		{ID: 1, CreatedAt: at(2025, 9, 14, 0, 0)},
		{ID: 2, CreatedAt: at(2025, 9, 20, 23, 59)},
		{ID: 3, CreatedAt: at(2025, 9, 13, 23, 59)},
		{ID: 4, CreatedAt: nil},
	}
	cancelled := []integration.Subscription{
		{ID: 5, CancelledOn: at(2025, 9, 16, 10, 0)},
		{ID: 6, CancelledOn: at(2025, 9, 21, 0, 0)},
		{ID: 7},
	}

	m := Compute(active, cancelled, now)
	assert.Equal(t, 4, m.ActiveSubscribers)
	assert.Equal(t, 2, m.NewThisWeek)
	assert.Equal(t, 1, m.CancelledThisWeek)
	assert.Equal(t, "Sep 14", m.WeekStart)
	assert.Equal(t, "Sep 20", m.WeekEnd)
}

func TestHighWaterMark(t *testing.T) {
	var h HighWaterMark

	high, isNew := h.Observe(10)
	assert.Equal(t, 10, high)
	assert.True(t, isNew)

	high, isNew = h.Observe(8)
	assert.Equal(t, 10, high)
	assert.False(t, isNew)

	_, isNew = h.Observe(10)
	assert.False(t, isNew)

	h.Reset()
	assert.Equal(t, 0, h.High())
}

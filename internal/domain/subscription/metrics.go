// Package subscription computes weekly subscriber movement from subscription
// contracts.
package subscription

import (
	"sync"
	"time"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// Week is a Sunday to Saturday calendar week
type Week struct {
	Start time.Time
	End   time.Time // Saturday 23:59:59
}

// CalendarWeek returns the week containing now, starting on the most recent Sunday
func CalendarWeek(now time.Time) Week {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -int(today.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return Week{Start: start, End: end}
}

// Contains reports whether t falls within the week, bounds included
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Metrics is the weekly subscriber movement
type Metrics struct {
	ActiveSubscribers int    `json:"active_subscribers"`
	NewThisWeek       int    `json:"new_this_week"`
	CancelledThisWeek int    `json:"cancelled_this_week"`
	WeekStart         string `json:"week_start"` // e.g. "Sep 14"
	WeekEnd           string `json:"week_end"`
	AllTimeHigh       int    `json:"all_time_high"`
	IsNewHigh         bool   `json:"is_new_high"`
}

// Compute counts active subscribers plus the contracts created and cancelled
// during the week of now. Contracts without a usable timestamp are not counted
// as movement.
func Compute(active, cancelled []integration.Subscription, now time.Time) Metrics {
	week := CalendarWeek(now)
	m := Metrics{
		ActiveSubscribers: len(active),
		WeekStart:         week.Start.Format("Jan 02"),
		WeekEnd:           week.End.Format("Jan 02"),
	}

	for _, s := range active {
		if s.CreatedAt != nil && week.Contains(*s.CreatedAt) {
			m.NewThisWeek++
		}
	}
	for _, s := range cancelled {
		if s.CancelledOn != nil && week.Contains(*s.CancelledOn) {
			m.CancelledThisWeek++
		}
	}
	return m
}

// HighWaterMark tracks the highest active subscriber count seen by this process
type HighWaterMark struct {
	mu   sync.Mutex
	high int
}

// Observe records a count and reports the high and whether count set a new one
func (h *HighWaterMark) Observe(count int) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if count > h.high {
		h.high = count
		return h.high, true
	}
	return h.high, false
}

// High returns the highest count observed
func (h *HighWaterMark) High() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.high
}

// Reset forgets the recorded high
func (h *HighWaterMark) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.high = 0
}

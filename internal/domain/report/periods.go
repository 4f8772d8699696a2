package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Window is a day-inclusive calendar range
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow creates a window from two dates, truncated to days
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: startOfDay(start), End: startOfDay(end)}
	if w.Start.After(w.End) {
		return Window{}, ErrInvalidDateRange
	}
	return w, nil
}

// Contains reports whether t falls on a day within the window
func (w Window) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, w.Start.Location())
	return !d.Before(w.Start) && !d.After(w.End)
}

// EndOfDay returns the last instant of the window's final day
func (w Window) EndOfDay() time.Time {
	return w.End.AddDate(0, 0, 1).Add(-time.Second)
}

// Key identifies the window in cache keys
func (w Window) Key() string {
	return w.Start.Format("2006-01-02") + ".." + w.End.Format("2006-01-02")
}

// MonthLabel renders the window as "Sep 1-17"
func (w Window) MonthLabel() string {
	return fmt.Sprintf("%s %d-%d", w.Start.Format("Jan"), w.Start.Day(), w.End.Day())
}

// YearLabel renders the window as "Sep 2025 1-17"
func (w Window) YearLabel() string {
	return fmt.Sprintf("%s %d-%d", w.Start.Format("Jan 2006"), w.Start.Day(), w.End.Day())
}

// PeriodWindows are the comparison windows anchored on one day
type PeriodWindows struct {
	Today     time.Time `json:"today"`
	MTD       Window    `json:"mtd"`
	YTD       Window    `json:"ytd"`
	LastMonth Window    `json:"last_month"`
	LFL       Window    `json:"lfl"`
	YTDLFL    Window    `json:"ytd_lfl"`
}

// NewPeriodWindows builds MTD, YTD, last-month, LFL and YTD-LFL windows for now.
// Last month runs to the same day clamped to that month's length; the prior
// year windows run to the same day last year, with Feb 29 mapped to Feb 28.
func NewPeriodWindows(now time.Time) PeriodWindows {
	today := startOfDay(now)
	loc := today.Location()
	year, month, day := today.Date()

	lmYear, lmMonth := year, month-1
	if month == time.January {
		lmYear, lmMonth = year-1, time.December
	}
	lmDay := min(day, daysIn(lmYear, lmMonth, loc))

	lyDay := min(day, daysIn(year-1, month, loc))
	sameDayLastYear := time.Date(year-1, month, lyDay, 0, 0, 0, 0, loc)

	return PeriodWindows{
		Today: today,
		MTD:   Window{Start: time.Date(year, month, 1, 0, 0, 0, 0, loc), End: today},
		YTD:   Window{Start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc), End: today},
		LastMonth: Window{
			Start: time.Date(lmYear, lmMonth, 1, 0, 0, 0, 0, loc),
			End:   time.Date(lmYear, lmMonth, lmDay, 0, 0, 0, 0, loc),
		},
		LFL: Window{
			Start: time.Date(year-1, month, 1, 0, 0, 0, 0, loc),
			End:   sameDayLastYear,
		},
		YTDLFL: Window{
			Start: time.Date(year-1, time.January, 1, 0, 0, 0, 0, loc),
			End:   sameDayLastYear,
		},
	}
}

// Span returns the window covering every period, for a single upstream fetch
func (p PeriodWindows) Span() Window {
	return Window{Start: p.YTDLFL.Start, End: p.Today}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ---------------------------------------------------------------------------
// Variance
// ---------------------------------------------------------------------------

// VarianceResult compares a current value against a base
type VarianceResult struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Diff     decimal.Decimal `json:"diff"`
	Pct      decimal.Decimal `json:"pct"`
	HasBase  bool            `json:"has_base"`
}

// Variance returns cur - prev and the percentage change. The percentage is
// only defined for a positive base.
func Variance(cur, prev decimal.Decimal) VarianceResult {
	v := VarianceResult{
		Current:  cur,
		Previous: prev,
		Diff:     cur.Sub(prev),
		Pct:      decimal.Zero,
	}
	if prev.IsPositive() {
		v.HasBase = true
		v.Pct = cur.Div(prev).Sub(decimal.NewFromInt(1)).Mul(hundred)
	}
	return v
}

// MarginDelta returns the change in percentage points, reported only for a positive base
func MarginDelta(cur, prev decimal.Decimal) *decimal.Decimal {
	if !prev.IsPositive() {
		return nil
	}
	d := cur.Sub(prev)
	return &d
}

// OrderDelta returns the change in order count, reported only for a non-empty base
func OrderDelta(cur, prev int) *int {
	if prev <= 0 {
		return nil
	}
	d := cur - prev
	return &d
}

// ---------------------------------------------------------------------------
// Period metrics
// ---------------------------------------------------------------------------

// PeriodMetrics summarises revenue and profit for a window
type PeriodMetrics struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
	MarginPct decimal.Decimal `json:"margin_pct"`
	Orders    int             `json:"orders"`
	COGS      decimal.Decimal `json:"cogs"`
	Discounts decimal.Decimal `json:"discounts"`
}

// D2CPeriodMetrics sums net revenue and contribution across orders
func D2CPeriodMetrics(orders []OrderMetrics) PeriodMetrics {
	p := PeriodMetrics{
		Revenue:   decimal.Zero,
		Profit:    decimal.Zero,
		COGS:      decimal.Zero,
		Discounts: decimal.Zero,
	}
	for _, o := range orders {
		p.Orders++
		p.Revenue = p.Revenue.Add(o.NetRevenue)
		p.Profit = p.Profit.Add(o.Contribution)
		p.COGS = p.COGS.Add(o.COGS)
		p.Discounts = p.Discounts.Add(o.TotalDiscounts)
	}
	p.MarginPct = PercentOf(p.Profit, p.Revenue)
	return p
}

// OrdersInWindow keeps orders dispatched within the window
func OrdersInWindow(orders []OrderMetrics, w Window) []OrderMetrics {
	out := make([]OrderMetrics, 0)
	for _, o := range orders {
		if w.Contains(o.SentOutAt) {
			out = append(out, o)
		}
	}
	return out
}

package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// weekdayOrder ranks weekday names for sorting, Monday first
var weekdayOrder = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}

// DayFilter selects which dispatch weekdays are reported
type DayFilter struct {
	IncludeMonday   bool
	IncludeThursday bool
	IncludeAll      bool
}

// FilterByWeekday keeps orders dispatched on an allowed weekday.
// IncludeAll overrides the per-day flags.
func FilterByWeekday(orders []OrderMetrics, filter DayFilter) []OrderMetrics {
	if filter.IncludeAll {
		return orders
	}

	allowed := make(map[string]bool, 2)
	if filter.IncludeMonday {
		allowed[time.Monday.String()] = true
	}
	if filter.IncludeThursday {
		allowed[time.Thursday.String()] = true
	}

	out := make([]OrderMetrics, 0, len(orders))
	for _, o := range orders {
		if allowed[o.SentOutWeekday] {
			out = append(out, o)
		}
	}
	return out
}

// KPIs are summary totals across a set of orders
type KPIs struct {
	TotalOrders           int             `json:"total_orders"`
	TotalUnits            int             `json:"total_units"`
	GrossItemValue        decimal.Decimal `json:"gross_item_value"`
	TotalDiscounts        decimal.Decimal `json:"total_discounts"`
	NetRevenue            decimal.Decimal `json:"net_revenue"`
	TotalCOGS             decimal.Decimal `json:"total_cogs"`
	TotalPackaging        decimal.Decimal `json:"total_packaging"`
	TotalContribution     decimal.Decimal `json:"total_contribution"`
	AvgContributionMargin decimal.Decimal `json:"avg_contribution_margin"`
	MissingCostsCount     int             `json:"missing_costs_count"`
}

// CalculateKPIs sums order metrics. An empty input yields all zeros.
func CalculateKPIs(orders []OrderMetrics) KPIs {
	k := KPIs{
		GrossItemValue:        decimal.Zero,
		TotalDiscounts:        decimal.Zero,
		NetRevenue:            decimal.Zero,
		TotalCOGS:             decimal.Zero,
		TotalPackaging:        decimal.Zero,
		TotalContribution:     decimal.Zero,
		AvgContributionMargin: decimal.Zero,
	}

	for _, o := range orders {
		k.TotalOrders++
		k.TotalUnits += o.TotalUnits
		k.GrossItemValue = k.GrossItemValue.Add(o.GrossItemValue)
		k.TotalDiscounts = k.TotalDiscounts.Add(o.TotalDiscounts)
		k.NetRevenue = k.NetRevenue.Add(o.NetRevenue)
		k.TotalCOGS = k.TotalCOGS.Add(o.COGS)
		k.TotalPackaging = k.TotalPackaging.Add(o.PackagingTotal)
		k.TotalContribution = k.TotalContribution.Add(o.Contribution)
		k.MissingCostsCount += o.MissingCostCount
	}
	k.AvgContributionMargin = PercentOf(k.TotalContribution, k.NetRevenue)

	return k
}

// ---------------------------------------------------------------------------
// Weekly summary
// ---------------------------------------------------------------------------

// WeekdayRow aggregates the orders of one weekday within an ISO week
type WeekdayRow struct {
	Week                  string          `json:"week"`
	Weekday               string          `json:"weekday"`
	Orders                int             `json:"orders"`
	Units                 int             `json:"units"`
	GrossValue            decimal.Decimal `json:"gross_value"`
	Discounts             decimal.Decimal `json:"discounts"`
	NetRevenue            decimal.Decimal `json:"net_revenue"`
	COGS                  decimal.Decimal `json:"cogs"`
	Packaging             decimal.Decimal `json:"packaging"`
	Contribution          decimal.Decimal `json:"contribution"`
	ContributionMarginPct decimal.Decimal `json:"contribution_margin_pct"`
}

// WeeklySummaryTable holds weekday rows sorted by week, then weekday
type WeeklySummaryTable struct {
	Rows []WeekdayRow `json:"rows"`
}

// WeeklySummary groups orders by ISO week and dispatch weekday
func WeeklySummary(orders []OrderMetrics) WeeklySummaryTable {
	type key struct{ week, weekday string }
	groups := make(map[key]*WeekdayRow)

	for _, o := range orders {
		k := key{o.SentOutWeek, o.SentOutWeekday}
		row, ok := groups[k]
		if !ok {
			row = &WeekdayRow{
				Week:         o.SentOutWeek,
				Weekday:      o.SentOutWeekday,
				GrossValue:   decimal.Zero,
				Discounts:    decimal.Zero,
				NetRevenue:   decimal.Zero,
				COGS:         decimal.Zero,
				Packaging:    decimal.Zero,
				Contribution: decimal.Zero,
			}
			groups[k] = row
		}
		row.Orders++
		row.Units += o.TotalUnits
		row.GrossValue = row.GrossValue.Add(o.GrossItemValue)
		row.Discounts = row.Discounts.Add(o.TotalDiscounts)
		row.NetRevenue = row.NetRevenue.Add(o.NetRevenue)
		row.COGS = row.COGS.Add(o.COGS)
		row.Packaging = row.Packaging.Add(o.PackagingTotal)
		row.Contribution = row.Contribution.Add(o.Contribution)
	}

	rows := make([]WeekdayRow, 0, len(groups))
	for _, row := range groups {
		if row.NetRevenue.IsZero() {
			row.ContributionMarginPct = decimal.Zero
		} else {
			row.ContributionMarginPct = row.Contribution.Div(row.NetRevenue).Mul(hundred)
		}
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Week != rows[j].Week {
			return rows[i].Week < rows[j].Week
		}
		return weekdayOrder[rows[i].Weekday] < weekdayOrder[rows[j].Weekday]
	})

	return WeeklySummaryTable{Rows: rows}
}

// PivotRow is one ISO week with per-weekday metrics keyed "<Weekday>_<metric>"
type PivotRow struct {
	Week    string                     `json:"week"`
	Metrics map[string]decimal.Decimal `json:"metrics"`
}

// Pivot flattens the summary to one row per week
func (t WeeklySummaryTable) Pivot() []PivotRow {
	out := make([]PivotRow, 0)
	index := make(map[string]int)

	for _, row := range t.Rows {
		i, ok := index[row.Week]
		if !ok {
			i = len(out)
			index[row.Week] = i
			out = append(out, PivotRow{Week: row.Week, Metrics: make(map[string]decimal.Decimal)})
		}
		m := out[i].Metrics
		m[row.Weekday+"_orders"] = decimal.NewFromInt(int64(row.Orders))
		m[row.Weekday+"_units"] = decimal.NewFromInt(int64(row.Units))
		m[row.Weekday+"_net_revenue"] = row.NetRevenue
		m[row.Weekday+"_contribution"] = row.Contribution
		m[row.Weekday+"_contribution_margin_pct"] = row.ContributionMarginPct
	}
	return out
}

// ---------------------------------------------------------------------------
// Weekly KPIs
// ---------------------------------------------------------------------------

// WeekKPI summarises one ISO week
type WeekKPI struct {
	Week      string          `json:"week"`
	DateRange string          `json:"date_range"`
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	Discounts decimal.Decimal `json:"discounts"`
	Profit    decimal.Decimal `json:"profit"`
	COGS      decimal.Decimal `json:"cogs"`
	Margin    decimal.Decimal `json:"margin"`
	AOV       decimal.Decimal `json:"aov"`
}

// WeeklyKPIs aggregates revenue and profit per ISO week, oldest first
func WeeklyKPIs(orders []OrderMetrics) []WeekKPI {
	groups := make(map[string]*WeekKPI)
	for _, o := range orders {
		w, ok := groups[o.SentOutWeek]
		if !ok {
			w = &WeekKPI{
				Week:      o.SentOutWeek,
				DateRange: WeekDateRange(o.SentOutWeek),
				Revenue:   decimal.Zero,
				Discounts: decimal.Zero,
				Profit:    decimal.Zero,
				COGS:      decimal.Zero,
			}
			groups[o.SentOutWeek] = w
		}
		w.Orders++
		w.Revenue = w.Revenue.Add(o.NetRevenue)
		w.Discounts = w.Discounts.Add(o.TotalDiscounts)
		w.Profit = w.Profit.Add(o.Contribution)
		w.COGS = w.COGS.Add(o.COGS)
	}

	out := make([]WeekKPI, 0, len(groups))
	for _, w := range groups {
		w.Margin = decimal.Zero
		if !w.Revenue.IsZero() {
			w.Margin = w.Profit.Div(w.Revenue).Mul(hundred).Round(1)
		}
		w.AOV = decimal.Zero
		if w.Orders > 0 {
			w.AOV = w.Revenue.Div(decimal.NewFromInt(int64(w.Orders))).Round(2)
		}
		out = append(out, *w)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// WeekDateRange renders an ISO week ("2025-W03") as "13 Jan - 19 Jan".
// Malformed weeks yield an empty string.
func WeekDateRange(isoWeek string) string {
	monday, ok := ISOWeekStart(isoWeek)
	if !ok {
		return ""
	}
	sunday := monday.AddDate(0, 0, 6)
	return fmt.Sprintf("%d %s - %d %s", monday.Day(), monday.Format("Jan"), sunday.Day(), sunday.Format("Jan"))
}

// ISOWeekStart returns the Monday of an ISO week string
func ISOWeekStart(isoWeek string) (time.Time, bool) {
	yearPart, weekPart, found := strings.Cut(isoWeek, "-W")
	if !found {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return time.Time{}, false
	}
	week, err := strconv.Atoi(weekPart)
	if err != nil {
		return time.Time{}, false
	}

	// Week 1 is the week containing January 4th
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (week-1)*7), true
}

// ---------------------------------------------------------------------------
// Order rows
// ---------------------------------------------------------------------------

// OrderRow is the flattened per-order view used by listings and exports
type OrderRow struct {
	SentOutAt             time.Time       `json:"sent_out_at"`
	Weekday               string          `json:"weekday"`
	Week                  string          `json:"week"`
	OrderName             string          `json:"order_name"`
	CustomerID            *int64          `json:"customer_id,omitempty"`
	CustomerName          string          `json:"customer_name"`
	OrderID               int64           `json:"order_id"`
	SKUCount              int             `json:"sku_count"`
	TotalUnits            int             `json:"total_units"`
	BoxType               BoxType         `json:"box_type"`
	BoxMultiplier         int             `json:"box_multiplier"`
	GrossItemValue        decimal.Decimal `json:"gross_item_value"`
	TotalDiscounts        decimal.Decimal `json:"total_discounts"`
	NetRevenue            decimal.Decimal `json:"net_revenue"`
	ShippingPaid          decimal.Decimal `json:"shipping_paid"`
	COGS                  decimal.Decimal `json:"cogs"`
	PackagingTotal        decimal.Decimal `json:"packaging_total"`
	GrossProfit           decimal.Decimal `json:"gross_profit"`
	Contribution          decimal.Decimal `json:"contribution"`
	GrossMarginPct        decimal.Decimal `json:"gross_margin_pct"`
	ContributionMarginPct decimal.Decimal `json:"contribution_margin_pct"`
	MissingCostCount      int             `json:"missing_cost_count"`
	Currency              string          `json:"currency"`
	IsFirstOrder          bool            `json:"is_first_order"`
}

// OrderRows flattens order metrics, dropping line items
func OrderRows(orders []OrderMetrics) []OrderRow {
	rows := make([]OrderRow, len(orders))
	for i, o := range orders {
		rows[i] = OrderRow{
			SentOutAt:             o.SentOutAt,
			Weekday:               o.SentOutWeekday,
			Week:                  o.SentOutWeek,
			OrderName:             o.OrderName,
			CustomerID:            o.CustomerID,
			CustomerName:          o.CustomerName,
			OrderID:               o.OrderID,
			SKUCount:              o.SKUCount,
			TotalUnits:            o.TotalUnits,
			BoxType:               o.BoxType,
			BoxMultiplier:         o.BoxMultiplier,
			GrossItemValue:        o.GrossItemValue,
			TotalDiscounts:        o.TotalDiscounts,
			NetRevenue:            o.NetRevenue,
			ShippingPaid:          o.ShippingPaid,
			COGS:                  o.COGS,
			PackagingTotal:        o.PackagingTotal,
			GrossProfit:           o.GrossProfit,
			Contribution:          o.Contribution,
			GrossMarginPct:        o.GrossMarginPct,
			ContributionMarginPct: o.ContributionMarginPct,
			MissingCostCount:      o.MissingCostCount,
			Currency:              o.Currency,
			IsFirstOrder:          o.IsFirstOrder,
		}
	}
	return rows
}

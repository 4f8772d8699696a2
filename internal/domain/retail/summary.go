package retail

import (
	"sort"
	"time"

	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OrdersInWindow keeps dated orders processed within the window
func OrdersInWindow(orders []Order, w report.Window) []Order {
	out := make([]Order, 0)
	for _, o := range orders {
		if o.HasDate() && w.Contains(o.Date) {
			out = append(out, o)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Period figures
// ---------------------------------------------------------------------------

// PeriodRevenue is the order count and revenue of every store in a period
type PeriodRevenue struct {
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// SumRevenue totals revenue across all stores
func SumRevenue(orders []Order) PeriodRevenue {
	r := PeriodRevenue{Revenue: decimal.Zero}
	for _, o := range orders {
		r.Orders++
		r.Revenue = r.Revenue.Add(o.Total)
	}
	return r
}

// PeriodProfitability is the profit of the stores priced by the cost model
type PeriodProfitability struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
	MarginPct decimal.Decimal `json:"margin_pct"`
	Orders    int             `json:"orders"`
}

// PeriodProfitability prices each eligible order, treating its quantity as
// both cases and units
func (m CostModel) PeriodProfitability(orders []Order) PeriodProfitability {
	p := PeriodProfitability{
		Revenue:   decimal.Zero,
		Profit:    decimal.Zero,
		MarginPct: decimal.Zero,
	}
	for _, o := range orders {
		if IsExcludedStore(o.Store) {
			continue
		}
		prof := m.Calculate(o.Total, o.Qty, o.Qty)
		p.Orders++
		p.Revenue = p.Revenue.Add(o.Total)
		p.Profit = p.Profit.Add(prof.Profit)
	}
	if p.Revenue.IsPositive() {
		p.MarginPct = p.Profit.Div(p.Revenue).Mul(hundred)
	}
	return p
}

// ---------------------------------------------------------------------------
// Store summary
// ---------------------------------------------------------------------------

// StoreSummaryRow is the all-time order history of one store name
type StoreSummaryRow struct {
	Store             string          `json:"store"`
	DisplayName       string          `json:"display_name"` // Title-cased normalized name
	Normalized        string          `json:"normalized"`
	Orders            int             `json:"orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	Units             int             `json:"units"`
	LastOrder         *time.Time      `json:"last_order,omitempty"`
	PossibleDuplicate bool            `json:"possible_duplicate"`
}

// StoreSummary groups orders by store, most recent order first. Stores whose
// normalized names collide are flagged as possible duplicates.
func StoreSummary(orders []Order) []StoreSummaryRow {
	groups := make(map[string]*StoreSummaryRow)
	for _, o := range orders {
		row, ok := groups[o.Store]
		if !ok {
			row = &StoreSummaryRow{Store: o.Store, Revenue: decimal.Zero}
			groups[o.Store] = row
		}
		row.Orders++
		row.Revenue = row.Revenue.Add(o.Total)
		row.Units += o.Qty
		if o.HasDate() && (row.LastOrder == nil || o.Date.After(*row.LastOrder)) {
			d := o.Date
			row.LastOrder = &d
		}
	}

	title := cases.Title(language.English)
	normalizedCount := make(map[string]int, len(groups))
	rows := make([]StoreSummaryRow, 0, len(groups))
	for _, row := range groups {
		row.Normalized = NormalizeStoreName(row.Store)
		row.DisplayName = title.String(row.Normalized)
		normalizedCount[row.Normalized]++
		rows = append(rows, *row)
	}
	for i := range rows {
		rows[i].PossibleDuplicate = normalizedCount[rows[i].Normalized] > 1
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].LastOrder, rows[j].LastOrder
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return rows[i].Store < rows[j].Store
	})
	return rows
}

// ---------------------------------------------------------------------------
// Monthly summary
// ---------------------------------------------------------------------------

// MonthlyRow totals the orders of one calendar month
type MonthlyRow struct {
	Month   string          `json:"month"` // e.g. "2025-09"
	Orders  int             `json:"orders"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthlySummary groups dated orders by month, latest month first
func MonthlySummary(orders []Order) []MonthlyRow {
	groups := make(map[string]*MonthlyRow)
	for _, o := range orders {
		if !o.HasDate() {
			continue
		}
		month := o.Date.Format("2006-01")
		row, ok := groups[month]
		if !ok {
			row = &MonthlyRow{Month: month, Revenue: decimal.Zero}
			groups[month] = row
		}
		row.Orders++
		row.Units += o.Qty
		row.Revenue = row.Revenue.Add(o.Total)
	}

	rows := make([]MonthlyRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month > rows[j].Month })
	return rows
}

// ---------------------------------------------------------------------------
// Store profitability
// ---------------------------------------------------------------------------

// StoreProfitRow is the priced order history of one store
type StoreProfitRow struct {
	Store       string          `json:"store"`
	Cases       int             `json:"cases"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	Fulfillment decimal.Decimal `json:"fulfillment"`
	Delivery    decimal.Decimal `json:"delivery"`
	Commission  decimal.Decimal `json:"commission"`
	Profit      decimal.Decimal `json:"profit"`
	MarginPct   decimal.Decimal `json:"margin_pct"` // Rounded to 1dp
}

// ProfitabilityReport holds per-store profitability and overall totals
type ProfitabilityReport struct {
	Stores           []StoreProfitRow `json:"stores"`
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	TotalCOGS        decimal.Decimal  `json:"total_cogs"`
	TotalFulfillment decimal.Decimal  `json:"total_fulfillment"`
	TotalDelivery    decimal.Decimal  `json:"total_delivery"`
	TotalCommission  decimal.Decimal  `json:"total_commission"`
	TotalProfit      decimal.Decimal  `json:"total_profit"`
	AvgMarginPct     decimal.Decimal  `json:"avg_margin_pct"`
}

// StoreProfitability prices every eligible order and groups the result by
// store, most profitable first
func (m CostModel) StoreProfitability(orders []Order) ProfitabilityReport {
	r := ProfitabilityReport{
		TotalRevenue:     decimal.Zero,
		TotalCOGS:        decimal.Zero,
		TotalFulfillment: decimal.Zero,
		TotalDelivery:    decimal.Zero,
		TotalCommission:  decimal.Zero,
		TotalProfit:      decimal.Zero,
		AvgMarginPct:     decimal.Zero,
	}

	groups := make(map[string]*StoreProfitRow)
	for _, o := range orders {
		if IsExcludedStore(o.Store) {
			continue
		}
		prof := m.Calculate(o.Total, o.Qty, o.Qty)
		fulfillment := prof.Fulfillment()

		row, ok := groups[o.Store]
		if !ok {
			row = &StoreProfitRow{
				Store:       o.Store,
				Revenue:     decimal.Zero,
				COGS:        decimal.Zero,
				Fulfillment: decimal.Zero,
				Delivery:    decimal.Zero,
				Commission:  decimal.Zero,
				Profit:      decimal.Zero,
			}
			groups[o.Store] = row
		}
		row.Cases += o.Qty
		row.Revenue = row.Revenue.Add(prof.Revenue)
		row.COGS = row.COGS.Add(prof.COGS)
		row.Fulfillment = row.Fulfillment.Add(fulfillment)
		row.Delivery = row.Delivery.Add(prof.DeliveryCost)
		row.Commission = row.Commission.Add(prof.Commission)
		row.Profit = row.Profit.Add(prof.Profit)

		r.TotalRevenue = r.TotalRevenue.Add(prof.Revenue)
		r.TotalCOGS = r.TotalCOGS.Add(prof.COGS)
		r.TotalFulfillment = r.TotalFulfillment.Add(fulfillment)
		r.TotalDelivery = r.TotalDelivery.Add(prof.DeliveryCost)
		r.TotalCommission = r.TotalCommission.Add(prof.Commission)
		r.TotalProfit = r.TotalProfit.Add(prof.Profit)
	}

	r.Stores = make([]StoreProfitRow, 0, len(groups))
	for _, row := range groups {
		row.MarginPct = decimal.Zero
		if !row.Revenue.IsZero() {
			row.MarginPct = row.Profit.Div(row.Revenue).Mul(hundred).Round(1)
		}
		r.Stores = append(r.Stores, *row)
	}
	sort.Slice(r.Stores, func(i, j int) bool {
		if !r.Stores[i].Profit.Equal(r.Stores[j].Profit) {
			return r.Stores[i].Profit.GreaterThan(r.Stores[j].Profit)
		}
		return r.Stores[i].Store < r.Stores[j].Store
	})

	if r.TotalRevenue.IsPositive() {
		r.AvgMarginPct = r.TotalProfit.Div(r.TotalRevenue).Mul(hundred)
	}
	return r
}

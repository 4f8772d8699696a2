package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/gopuff"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/domain/retail"
	"github.com/homecooks/profitability/internal/domain/subscription"
)

// DefaultWindowDays is the length of the window used when a query names no dates
const DefaultWindowDays = 14

// DashboardQuery selects the reporting window and dispatch weekdays
type DashboardQuery struct {
	Start           time.Time
	End             time.Time
	IncludeMonday   bool
	IncludeThursday bool
	IncludeAll      bool
}

// DayFilter returns the weekday filter of the query
func (q DashboardQuery) DayFilter() report.DayFilter {
	return report.DayFilter{
		IncludeMonday:   q.IncludeMonday,
		IncludeThursday: q.IncludeThursday,
		IncludeAll:      q.IncludeAll,
	}
}

// DefaultWindow returns the last DefaultWindowDays days ending today
func DefaultWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return end.AddDate(0, 0, -DefaultWindowDays), end
}

// WindowResponse describes a reporting window
type WindowResponse struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	MonthLabel string `json:"month_label"`
	YearLabel  string `json:"year_label"`
}

func toWindowResponse(w report.Window) WindowResponse {
	return WindowResponse{
		Start:      w.Start.Format(dateLayout),
		End:        w.End.Format(dateLayout),
		MonthLabel: w.MonthLabel(),
		YearLabel:  w.YearLabel(),
	}
}

const dateLayout = "2006-01-02"

// PeriodLabels names the comparison windows for display
type PeriodLabels struct {
	MTD       string `json:"mtd"`
	YTD       string `json:"ytd"`
	LastMonth string `json:"last_month"`
	LFL       string `json:"lfl"`
	YTDLFL    string `json:"ytd_lfl"`
}

func periodLabels(p report.PeriodWindows) PeriodLabels {
	return PeriodLabels{
		MTD:       p.MTD.MonthLabel(),
		YTD:       p.YTD.YearLabel(),
		LastMonth: p.LastMonth.MonthLabel(),
		LFL:       p.LFL.YearLabel(),
		YTDLFL:    p.YTDLFL.YearLabel(),
	}
}

// ---------------------------------------------------------------------------
// D2C
// ---------------------------------------------------------------------------

// PeriodOrders is the processed D2C order set of a window
type PeriodOrders struct {
	Window       report.Window
	LinnworksD2C int
	Orders       []report.OrderMetrics
	Total        int
	Skipped      int
}

// D2CPeriods holds the metrics of every comparison window
type D2CPeriods struct {
	MTD       report.PeriodMetrics `json:"mtd"`
	YTD       report.PeriodMetrics `json:"ytd"`
	LastMonth report.PeriodMetrics `json:"last_month"`
	LFL       report.PeriodMetrics `json:"lfl"`
	YTDLFL    report.PeriodMetrics `json:"ytd_lfl"`
}

// Variances compares revenue and profit across windows
type Variances struct {
	RevenueVsLastMonth report.VarianceResult `json:"revenue_vs_last_month"`
	ProfitVsLastMonth  report.VarianceResult `json:"profit_vs_last_month"`
	RevenueVsLFL       report.VarianceResult `json:"revenue_vs_lfl"`
	ProfitVsLFL        report.VarianceResult `json:"profit_vs_lfl"`
	YTDRevenueVsLFL    report.VarianceResult `json:"ytd_revenue_vs_lfl"`
	YTDProfitVsLFL     report.VarianceResult `json:"ytd_profit_vs_lfl"`
}

// MarginDeltas are margin changes in percentage points
type MarginDeltas struct {
	VsLastMonth *decimal.Decimal `json:"vs_last_month,omitempty"`
	VsLFL       *decimal.Decimal `json:"vs_lfl,omitempty"`
	YTDVsLFL    *decimal.Decimal `json:"ytd_vs_lfl,omitempty"`
}

// OrderDeltas are order count changes
type OrderDeltas struct {
	VsLastMonth *int `json:"vs_last_month,omitempty"`
	VsLFL       *int `json:"vs_lfl,omitempty"`
	YTDVsLFL    *int `json:"ytd_vs_lfl,omitempty"`
}

// SelectionStats counts the orders behind the selected window
type SelectionStats struct {
	LinnworksD2C int `json:"linnworks_d2c"`
	Processed    int `json:"processed"`
	Total        int `json:"total"`
	Skipped      int `json:"skipped"`
	Filtered     int `json:"filtered"`
}

// D2CDashboardResponse is the direct-to-consumer dashboard
type D2CDashboardResponse struct {
	Window       WindowResponse        `json:"window"`
	Labels       PeriodLabels          `json:"labels"`
	Periods      D2CPeriods            `json:"periods"`
	Variances    Variances             `json:"variances"`
	MarginDeltas MarginDeltas          `json:"margin_deltas"`
	OrderDeltas  OrderDeltas           `json:"order_deltas"`
	Stats        SelectionStats        `json:"stats"`
	KPIs         report.KPIs           `json:"kpis"`
	Weekly       []report.WeekKPI      `json:"weekly"`
	WeeklyPivot  []report.PivotRow     `json:"weekly_pivot"`
	Orders       []report.OrderRow     `json:"orders"`
	Packaging    []PackagingAssumption `json:"packaging"`
	Notice       string                `json:"notice,omitempty"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// OrdersResponse lists the order rows of the selected window
type OrdersResponse struct {
	Window WindowResponse    `json:"window"`
	Count  int               `json:"count"`
	Orders []report.OrderRow `json:"orders"`
}

// WeeklyResponse is the weekly view of the selected window
type WeeklyResponse struct {
	Window  WindowResponse      `json:"window"`
	Weekly  []report.WeekKPI    `json:"weekly"`
	Summary []report.WeekdayRow `json:"summary"`
	Pivot   []report.PivotRow   `json:"pivot"`
}

// PackagingAssumption is the priced contents of one box type
type PackagingAssumption struct {
	BoxType    report.BoxType              `json:"box_type"`
	Units      string                      `json:"units"`
	Components []report.PackagingComponent `json:"components"`
	Total      decimal.Decimal             `json:"total"`
}

// PackagingAssumptions lists the packaging cost tiers
func PackagingAssumptions() []PackagingAssumption {
	totals := report.PackagingTotals()
	return []PackagingAssumption{
		{
			BoxType:    report.BoxTypeSmall,
			Units:      "1-10",
			Components: report.PackagingComponents(report.BoxTypeSmall),
			Total:      totals[report.BoxTypeSmall],
		},
		{
			BoxType:    report.BoxTypeLarge,
			Units:      "11-16 (17+ ships in two large boxes)",
			Components: report.PackagingComponents(report.BoxTypeLarge),
			Total:      totals[report.BoxTypeLarge],
		},
	}
}

// ---------------------------------------------------------------------------
// Retail
// ---------------------------------------------------------------------------

// RetailQuery selects the retail reporting window
type RetailQuery struct {
	Start time.Time
	End   time.Time
}

// RetailPeriods holds all-store revenue of every comparison window
type RetailPeriods struct {
	MTD       retail.PeriodRevenue `json:"mtd"`
	YTD       retail.PeriodRevenue `json:"ytd"`
	LastMonth retail.PeriodRevenue `json:"last_month"`
	LFL       retail.PeriodRevenue `json:"lfl"`
	YTDLFL    retail.PeriodRevenue `json:"ytd_lfl"`
}

// RetailProfitPeriods holds cost-model profitability of every comparison window
type RetailProfitPeriods struct {
	MTD       retail.PeriodProfitability `json:"mtd"`
	YTD       retail.PeriodProfitability `json:"ytd"`
	LastMonth retail.PeriodProfitability `json:"last_month"`
	LFL       retail.PeriodProfitability `json:"lfl"`
	YTDLFL    retail.PeriodProfitability `json:"ytd_lfl"`
}

// RetailSelection is the selected window of the retail dashboard
type RetailSelection struct {
	Revenue       retail.PeriodRevenue       `json:"revenue"`
	Profitability retail.PeriodProfitability `json:"profitability"`
	Monthly       []retail.MonthlyRow        `json:"monthly"`
	Orders        []retail.Order             `json:"orders"`
}

// RetailDashboardResponse is the wholesale dashboard
type RetailDashboardResponse struct {
	Window             WindowResponse             `json:"window"`
	Labels             PeriodLabels               `json:"labels"`
	Periods            RetailPeriods              `json:"periods"`
	Profitability      RetailProfitPeriods        `json:"profitability"`
	Variances          Variances                  `json:"variances"`
	OrderDeltas        OrderDeltas                `json:"order_deltas"`
	Selected           RetailSelection            `json:"selected"`
	Stores             []retail.StoreSummaryRow   `json:"stores"`
	StoreProfitability retail.ProfitabilityReport `json:"store_profitability"`
	UniqueStores       int                        `json:"unique_stores"`
	AllTimeOrders      int                        `json:"all_time_orders"`
	GeneratedAt        time.Time                  `json:"generated_at"`
}

// StoresResponse is the all-time store summary
type StoresResponse struct {
	Stores        []retail.StoreSummaryRow `json:"stores"`
	UniqueStores  int                      `json:"unique_stores"`
	AllTimeOrders int                      `json:"all_time_orders"`
	Duplicates    int                      `json:"possible_duplicates"`
}

// RetailCostAssumptions lists the wholesale cost model and delivery charges
type RetailCostAssumptions struct {
	CostModel       retail.CostModel      `json:"cost_model"`
	Delivery        []retail.DeliveryBand `json:"delivery"`
	ExtraCaseCharge decimal.Decimal       `json:"extra_case_charge"`
	ExcludedStores  []string              `json:"excluded_stores"`
}

// ---------------------------------------------------------------------------
// Go Puff
// ---------------------------------------------------------------------------

// GoPuffResponse is the Go Puff sales dashboard
type GoPuffResponse struct {
	Summary    gopuff.Summary        `json:"summary"`
	LatestDate string                `json:"latest_date,omitempty"`
	Today      gopuff.DayStats       `json:"today"`
	TodaySales []gopuff.ProductShare `json:"today_sales"`
	MonthlyTop *gopuff.MonthlyTotal  `json:"monthly_top,omitempty"`
	Weekly     gopuff.WeeklySales    `json:"weekly"`
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

// SubscriptionResponse is the subscriber movement of the current week
type SubscriptionResponse struct {
	Available bool `json:"available"`
	subscription.Metrics
	FetchedAt time.Time `json:"fetched_at"`
}

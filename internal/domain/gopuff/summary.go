// Package gopuff reads the Go Puff retail sales spreadsheet: the summary tab
// maintained by the buyer and the raw per-product daily sales tab.
package gopuff

import (
	"strings"
	"time"

	"github.com/homecooks/profitability/internal/domain/integration"
)

const (
	sheetDateLayout = "01/02/2006"
	ukDateLayout    = "02/01/2006"
	notAvailable    = "N/A"
)

// Summary tab layout, as data row indexes (the header row is excluded)
const (
	rowLatestSalesDay = 1
	rowSKUOfDay       = 2
	rowWeeklyTop      = 5
	rowAllTimeTop     = 11

	rowProductsFirst = 19
	rowProductsLast  = 31
	colProduct       = 3
	colProductSold   = 10
)

// TopSeller is a product highlighted on the summary tab
type TopSeller struct {
	Product string `json:"product"`
	Sold    string `json:"sold"`
}

// ParseTopSellerCell reads a multi-line "title / product / ... / N sold" cell.
// Single-line cells carry no product.
func ParseTopSellerCell(cell string) TopSeller {
	if !strings.Contains(cell, "\n") {
		return TopSeller{Sold: "0"}
	}
	lines := strings.Split(cell, "\n")
	return TopSeller{
		Product: strings.TrimSpace(lines[1]),
		Sold:    strings.TrimSpace(strings.Replace(lines[len(lines)-1], " sold", "", 1)),
	}
}

// ProductTotal is an all-time total from the summary tab
type ProductTotal struct {
	Product   string `json:"product"`
	TotalSold string `json:"total_sold"`
}

// Summary is the parsed summary tab
type Summary struct {
	LatestSalesDay string         `json:"latest_sales_day"`
	SalesDate      *time.Time     `json:"sales_date,omitempty"`
	WeekCommencing string         `json:"week_commencing"` // dd/mm/yyyy or "N/A"
	Promotion      string         `json:"promotion,omitempty"`
	SKUOfDay       TopSeller      `json:"sku_of_day"`
	WeeklyTop      TopSeller      `json:"weekly_top"`
	AllTimeTop     TopSeller      `json:"all_time_top"`
	AllProducts    []ProductTotal `json:"all_products"`
}

// ParseSummary extracts the highlighted figures from the summary tab
func ParseSummary(t *integration.SheetTable) Summary {
	s := Summary{
		LatestSalesDay: notAvailable,
		WeekCommencing: notAvailable,
		AllProducts:    make([]ProductTotal, 0),
	}
	if t == nil {
		return s
	}

	if len(t.Rows) > rowLatestSalesDay {
		s.LatestSalesDay = t.Cell(rowLatestSalesDay, 0)
	}
	if date, ok := parseSalesDay(s.LatestSalesDay); ok {
		s.SalesDate = &date
		s.WeekCommencing = MondayOf(date).Format(ukDateLayout)
		s.Promotion = PromotionLabel(date)
	}

	s.SKUOfDay = ParseTopSellerCell(t.Cell(rowSKUOfDay, 0))
	s.WeeklyTop = ParseTopSellerCell(t.Cell(rowWeeklyTop, 0))
	s.AllTimeTop = ParseTopSellerCell(t.Cell(rowAllTimeTop, 0))

	for row := rowProductsFirst; row <= rowProductsLast && row < len(t.Rows); row++ {
		product := t.Cell(row, colProduct)
		sold := t.Cell(row, colProductSold)
		if product == "" || sold == "" {
			continue
		}
		s.AllProducts = append(s.AllProducts, ProductTotal{
			Product:   product,
			TotalSold: strings.TrimSpace(strings.Replace(sold, " sold", "", 1)),
		})
	}

	return s
}

// parseSalesDay reads the date out of "Latest sales day: MM/DD/YYYY"
func parseSalesDay(text string) (time.Time, bool) {
	_, value, found := strings.Cut(text, ": ")
	if !found {
		return time.Time{}, false
	}
	date, err := time.Parse(sheetDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// MondayOf returns midnight on the Monday of t's week
func MondayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ---------------------------------------------------------------------------
// Promotions
// ---------------------------------------------------------------------------

// Promotion is a dated in-app promotion run by the retailer
type Promotion struct {
	Label string
	Start time.Time
	End   time.Time
}

// Promotions lists known promotion periods
var Promotions = []Promotion{
	{
		Label: "PROMOTION PERIOD (Jul 1-28, 2025)",
		Start: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC),
	},
	{
		Label: "PROMOTION PERIOD (Oct 7-14, 2025)",
		Start: time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.October, 14, 0, 0, 0, 0, time.UTC),
	},
}

// PromotionLabel names the promotion running on a sales date, if any
func PromotionLabel(date time.Time) string {
	for _, p := range Promotions {
		if !date.Before(p.Start) && !date.After(p.End) {
			return p.Label
		}
	}
	return ""
}

// IsPromotionMonth reports whether a "January 2006" month label overlaps a promotion
func IsPromotionMonth(month string) bool {
	for _, p := range Promotions {
		if p.Start.Format(monthLayout) == month || p.End.Format(monthLayout) == month {
			return true
		}
	}
	return false
}

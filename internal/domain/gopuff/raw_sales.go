package gopuff

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
)

const (
	productNameColumn = "Product Name"
	monthLayout       = "January 2006"
)

// RawSales is the per-product daily unit sales tab.
// Units[i][j] is the sales of Products[i] on Dates[j].
type RawSales struct {
	Products []string
	Dates    []time.Time
	Units    [][]float64
}

// ParseRawSales reads the product column and every MM/DD/YYYY date column.
// Other columns are ignored and unparsable quantities count as zero.
func ParseRawSales(t *integration.SheetTable) RawSales {
	r := RawSales{
		Products: make([]string, 0),
		Dates:    make([]time.Time, 0),
		Units:    make([][]float64, 0),
	}
	if t == nil {
		return r
	}

	productCol := t.ColumnIndex(productNameColumn)
	dateCols := make([]int, 0, len(t.Header))
	for i, h := range t.Header {
		if i == productCol {
			continue
		}
		date, err := time.Parse(sheetDateLayout, strings.TrimSpace(h))
		if err != nil {
			continue
		}
		dateCols = append(dateCols, i)
		r.Dates = append(r.Dates, date)
	}

	for row := range t.Rows {
		r.Products = append(r.Products, t.Cell(row, productCol))
		units := make([]float64, len(dateCols))
		for j, col := range dateCols {
			units[j] = parseQuantity(t.Cell(row, col))
		}
		r.Units = append(r.Units, units)
	}

	return r
}

func parseQuantity(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// LatestDate returns the most recent date column
func (r RawSales) LatestDate() (time.Time, int, bool) {
	idx := -1
	var latest time.Time
	for j, d := range r.Dates {
		if idx == -1 || d.After(latest) {
			latest, idx = d, j
		}
	}
	return latest, idx, idx >= 0
}

// DayStats summarises sales on the latest day
type DayStats struct {
	Date          string `json:"date"` // MM/DD/YYYY
	TotalSKUs     int    `json:"total_skus"`
	SKUsWithSales int    `json:"skus_with_sales"`
	SKUsZeroSales int    `json:"skus_zero_sales"`
	TotalUnits    int    `json:"total_units"`
}

// TodayStats counts sales on the latest date column
func (r RawSales) TodayStats() DayStats {
	stats := DayStats{TotalSKUs: len(r.Products)}
	latest, col, ok := r.LatestDate()
	if !ok {
		return DayStats{}
	}
	stats.Date = latest.Format(sheetDateLayout)

	total := 0.0
	for i := range r.Products {
		v := r.Units[i][col]
		if v > 0 {
			stats.SKUsWithSales++
		}
		total += v
	}
	stats.SKUsZeroSales = stats.TotalSKUs - stats.SKUsWithSales
	stats.TotalUnits = int(total)
	return stats
}

// ProductShare is one product's part of the day's sales
type ProductShare struct {
	Product    string  `json:"product"`
	Quantity   int     `json:"quantity"`
	Percentage float64 `json:"percentage"` // Rounded to 1dp
}

// TodaySales lists products sold on the latest day, best sellers first
func (r RawSales) TodaySales() []ProductShare {
	out := make([]ProductShare, 0)
	_, col, ok := r.LatestDate()
	if !ok {
		return out
	}

	total := 0.0
	for i, product := range r.Products {
		qty := r.Units[i][col]
		if qty > 0 {
			out = append(out, ProductShare{Product: product, Quantity: int(qty)})
			total += qty
		}
	}
	for i := range out {
		out[i].Percentage = math.Round(float64(out[i].Quantity)/total*1000) / 10
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out
}

// MonthlyTotal is one product's sales over a calendar month
type MonthlyTotal struct {
	Product   string `json:"product"`
	Month     string `json:"month"` // e.g. "July 2025"
	Total     int    `json:"total"`
	Promotion bool   `json:"promotion"`
}

// MonthlyTop returns the best product-month. Ties go to the first product in
// sheet order, then the earliest month.
func (r RawSales) MonthlyTop() (MonthlyTotal, bool) {
	var best MonthlyTotal
	bestTotal := math.Inf(-1)
	found := false

	for i, product := range r.Products {
		months := make([]string, 0)
		totals := make(map[string]float64)
		for j, d := range r.Dates {
			m := d.Format(monthLayout)
			if _, ok := totals[m]; !ok {
				months = append(months, m)
			}
			totals[m] += r.Units[i][j]
		}
		for _, m := range months {
			if totals[m] > bestTotal {
				bestTotal = totals[m]
				best = MonthlyTotal{Product: product, Month: m, Total: int(totals[m])}
				found = true
			}
		}
	}

	best.Promotion = found && IsPromotionMonth(best.Month)
	return best, found
}

// ProductUnits is one product's units over a week
type ProductUnits struct {
	Product string `json:"product"`
	Units   int    `json:"units"`
}

// WeeklySales is the Monday to Sunday sales of one week
type WeeklySales struct {
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	Label      string         `json:"label"`
	Range      string         `json:"range"`
	Products   []ProductUnits `json:"products"`
	TotalUnits int            `json:"total_units"`
	SKUCount   int            `json:"sku_count"`
}

// WeeklySales totals sales for the week weekOffset weeks before the week of
// now. Only products with sales are listed, best sellers first.
func (r RawSales) WeeklySales(now time.Time, weekOffset int) (WeeklySales, error) {
	if weekOffset > 0 {
		return WeeklySales{}, report.ErrInvalidWeekOffset
	}

	monday := MondayOf(now).AddDate(0, 0, 7*weekOffset)
	mondayDate := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	sundayDate := mondayDate.AddDate(0, 0, 6)

	w := WeeklySales{
		Start:    mondayDate,
		End:      sundayDate,
		Label:    weekLabel(weekOffset),
		Range:    fmt.Sprintf("%s - %s", mondayDate.Format("Jan 02"), sundayDate.Format("Jan 02, 2006")),
		Products: make([]ProductUnits, 0),
	}

	for i, product := range r.Products {
		total := 0.0
		for j, d := range r.Dates {
			if !d.Before(mondayDate) && !d.After(sundayDate) {
				total += r.Units[i][j]
			}
		}
		if total > 0 {
			w.Products = append(w.Products, ProductUnits{Product: product, Units: int(total)})
			w.TotalUnits += int(total)
		}
	}
	w.SKUCount = len(w.Products)

	sort.SliceStable(w.Products, func(i, j int) bool { return w.Products[i].Units > w.Products[j].Units })
	return w, nil
}

func weekLabel(offset int) string {
	if offset == 0 {
		return "This Week"
	}
	return fmt.Sprintf("%d week(s) ago", -offset)
}

package retail

import (
	"strings"
	"time"
	"unicode"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Order is a wholesale order placed by a retail store
type Order struct {
	Store     string          `json:"store"`
	Reference string          `json:"reference"`
	Date      time.Time       `json:"date"` // Zero when the warehouse sent no usable date
	NumItems  int             `json:"num_items"`
	Qty       int             `json:"qty"`
	Total     decimal.Decimal `json:"total"`
	SKUs      string          `json:"skus"`
}

// HasDate reports whether the order carries a processed date
func (o Order) HasDate() bool {
	return !o.Date.IsZero()
}

// FromDetail builds a retail order from warehouse order details
func FromDetail(d integration.OrderDetail) Order {
	o := Order{
		Store:     d.StoreName(),
		Reference: d.Reference(),
		NumItems:  len(d.Items),
		Qty:       d.TotalQuantity(),
		Total:     d.TotalCharge,
		SKUs:      strings.Join(d.LeadingSKUs(), ", "),
	}
	if t, err := time.Parse(dateLayout, d.ProcessedDate()); err == nil {
		o.Date = t
	}
	return o
}

// FromDetails converts a batch of warehouse order details
func FromDetails(details []integration.OrderDetail) []Order {
	out := make([]Order, len(details))
	for i, d := range details {
		out[i] = FromDetail(d)
	}
	return out
}

// ManualOrder is a wholesale order recorded outside the warehouse
type ManualOrder struct {
	Store     string
	Reference string
	Qty       int
	Total     decimal.Decimal
	SKUs      string
}

// DefaultManualOrders returns the chilled Go Puff order booked outside the warehouse
func DefaultManualOrders() []ManualOrder {
	return []ManualOrder{
		{
			Store:     "Go Puff (chilled)",
			Reference: "MANUAL-GP-001",
			Qty:       100,
			Total:     decimal.RequireFromString("12784.00"),
			SKUs:      "Various",
		},
	}
}

// ToOrder dates a manual order
func (m ManualOrder) ToOrder(date time.Time) Order {
	y, mo, d := date.Date()
	return Order{
		Store:     m.Store,
		Reference: m.Reference,
		Date:      time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		NumItems:  1,
		Qty:       m.Qty,
		Total:     m.Total,
		SKUs:      m.SKUs,
	}
}

// excludedStoreMarkers mark stores whose orders are priced outside the cost model
var excludedStoreMarkers = []string{"go puff", "gopuff", "on the rocks"}

// IsExcludedStore reports whether a store is left out of profitability figures
func IsExcludedStore(store string) bool {
	lower := strings.ToLower(store)
	for _, marker := range excludedStoreMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var storeNameNoise = []string{" ltd", " limited", " plc", " inc", " llc", " store", " shop"}

// NormalizeStoreName reduces a store name to a comparison key for spotting duplicates
func NormalizeStoreName(name string) string {
	if name == "" {
		return "unknown"
	}
	normalized := strings.TrimSpace(strings.ToLower(name))
	for _, noise := range storeNameNoise {
		normalized = strings.ReplaceAll(normalized, noise, "")
	}

	normalized = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return -1
	}, normalized)

	return strings.Join(strings.Fields(normalized), " ")
}

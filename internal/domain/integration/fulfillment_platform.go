package integration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// noShippingMarker identifies wholesale orders in the warehouse postal service name
const noShippingMarker = "no shipping"

// ProcessedOrder is a warehouse search result for an order that has been dispatched
type ProcessedOrder struct {
	PkOrderID         string
	ReferenceNum      string
	ProcessedOn       *time.Time
	PostalServiceName string
	FullName          string
	Company           string
	TotalCharge       decimal.Decimal
	ItemCount         int
}

// IsRetail reports whether the order was a wholesale drop ("No Shipping Required")
func (o ProcessedOrder) IsRetail() bool {
	return IsNoShippingService(o.PostalServiceName)
}

// CleanReference returns the reference with '#' removed and whitespace trimmed
func (o ProcessedOrder) CleanReference() string {
	return CleanReference(o.ReferenceNum)
}

// IsNoShippingService reports whether a postal service name marks a wholesale order
func IsNoShippingService(postalService string) bool {
	return strings.Contains(strings.ToLower(postalService), noShippingMarker)
}

// CleanReference strips '#' and surrounding whitespace from an order reference
func CleanReference(ref string) string {
	return strings.TrimSpace(strings.ReplaceAll(ref, "#", ""))
}

// ParseOrderID parses a cleaned reference as a storefront order id
func ParseOrderID(ref string) (int64, bool) {
	id, err := strconv.ParseInt(CleanReference(ref), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// OrderDetail is the full warehouse record of an order
type OrderDetail struct {
	PkOrderID          string
	FullName           string
	Company            string
	ReferenceNum       string
	SecondaryReference string
	ProcessedDateTime  string
	TotalCharge        decimal.Decimal
	Items              []OrderDetailItem
}

// OrderDetailItem is a line of a warehouse order
type OrderDetailItem struct {
	SKU      string
	Quantity int
}

// StoreName blends company and contact name into a single store label
func (d OrderDetail) StoreName() string {
	name := strings.TrimSpace(d.FullName)
	company := strings.TrimSpace(d.Company)

	switch {
	case company != "" && name != "":
		if strings.EqualFold(company, name) {
			return company
		}
		return fmt.Sprintf("%s (%s)", company, name)
	case company != "":
		return company
	case name != "":
		return name
	default:
		return "Unknown"
	}
}

// Reference returns the secondary reference, falling back to the primary one
func (d OrderDetail) Reference() string {
	if d.SecondaryReference != "" {
		return d.SecondaryReference
	}
	return d.ReferenceNum
}

// ProcessedDate returns the YYYY-MM-DD prefix of the processed timestamp
func (d OrderDetail) ProcessedDate() string {
	if len(d.ProcessedDateTime) < 10 {
		return d.ProcessedDateTime
	}
	return d.ProcessedDateTime[:10]
}

// TotalQuantity sums item quantities
func (d OrderDetail) TotalQuantity() int {
	total := 0
	for _, item := range d.Items {
		total += item.Quantity
	}
	return total
}

// LeadingSKUs returns the unique SKUs among the first five items, in order
func (d OrderDetail) LeadingSKUs() []string {
	items := d.Items
	if len(items) > 5 {
		items = items[:5]
	}
	seen := make(map[string]struct{}, len(items))
	skus := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.SKU]; ok {
			continue
		}
		seen[item.SKU] = struct{}{}
		skus = append(skus, item.SKU)
	}
	return skus
}

// ---------------------------------------------------------------------------
// FulfillmentPlatform Port
// ---------------------------------------------------------------------------

// FulfillmentPlatform is the port for reading dispatched orders from the warehouse
type FulfillmentPlatform interface {
	// Authenticate establishes a session. Other calls authenticate lazily.
	Authenticate(ctx context.Context) error

	// SearchProcessedOrders returns every order processed between the two
	// calendar days, inclusive.
	SearchProcessedOrders(ctx context.Context, from, to time.Time) ([]ProcessedOrder, error)

	// GetOrdersByID returns full order details for warehouse order ids
	GetOrdersByID(ctx context.Context, pkOrderIDs []string) ([]OrderDetail, error)
}

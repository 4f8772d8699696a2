package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")

	// Order errors
	ErrOrderNotFound = errors.New("integration: platform order not found")
)

// MaxOrderIDsPerRequest is the largest id batch the storefront accepts in one
// orders request.
const MaxOrderIDsPerRequest = 50

// ---------------------------------------------------------------------------
// Commerce Orders
// ---------------------------------------------------------------------------

// CommerceOrder is a storefront order as the metrics pipeline sees it.
// Optional money fields are pointers: an absent value and a zero value drive
// different revenue fallbacks.
type CommerceOrder struct {
	ID              int64
	Name            string
	CreatedAt       *time.Time
	ProcessedAt     *time.Time
	Currency        string
	FinancialStatus string

	TotalPrice            decimal.Decimal
	TotalTax              decimal.Decimal
	SubtotalPrice         *decimal.Decimal
	TotalDiscounts        *decimal.Decimal
	CurrentSubtotalPrice  *decimal.Decimal
	CurrentTotalDiscounts *decimal.Decimal
	ShippingPaid          *decimal.Decimal

	LineItems       []CommerceLineItem
	Fulfillments    []Fulfillment
	Customer        *CommerceCustomer
	ShippingAddress *PostalAddress
	BillingAddress  *PostalAddress
}

// CommerceLineItem is a single line of a storefront order
type CommerceLineItem struct {
	SKU                 string
	VariantID           int64
	Title               string
	Quantity            int
	Price               decimal.Decimal
	DiscountAllocations []decimal.Decimal
}

// GrossValue returns price * quantity
func (l CommerceLineItem) GrossValue() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Fulfillment is a shipment record created by the storefront
type Fulfillment struct {
	ID        int64
	CreatedAt *time.Time
}

// CommerceCustomer is the customer attached to an order.
// OrdersCount is nil when the storefront sent it as null; adapters default
// an omitted count to 1.
type CommerceCustomer struct {
	ID          int64
	FirstName   string
	LastName    string
	OrdersCount *int
}

// FullName joins first and last name
func (c *CommerceCustomer) FullName() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PostalAddress carries the name parts of a shipping or billing address
type PostalAddress struct {
	Name      string
	FirstName string
	LastName  string
}

// DisplayName returns Name, falling back to first and last name
func (a *PostalAddress) DisplayName() string {
	if a == nil {
		return ""
	}
	if a.Name != "" {
		return a.Name
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// EarliestFulfillment returns the earliest fulfillment timestamp, or nil
// when the order has no dated fulfillment.
func (o *CommerceOrder) EarliestFulfillment() *time.Time {
	var earliest *time.Time
	for i := range o.Fulfillments {
		t := o.Fulfillments[i].CreatedAt
		if t == nil {
			continue
		}
		if earliest == nil || t.Before(*earliest) {
			earliest = t
		}
	}
	return earliest
}

// CustomerOrderSummary is a lightweight order row from a customer's history
type CustomerOrderSummary struct {
	ID          int64
	Name        string
	CreatedAt   *time.Time
	ProcessedAt *time.Time
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// Product is a storefront product with its images and variants
type Product struct {
	ID          int64
	Handle      string
	Title       string
	Status      string
	Vendor      string
	ProductType string
	Tags        string
	CreatedAt   string
	UpdatedAt   string
	PublishedAt string
	Images      []ProductImage
	Variants    []ProductVariant
}

// ProductImage is a product image
type ProductImage struct {
	Src string
}

// ProductVariant is a purchasable variant of a product
type ProductVariant struct {
	ID      int64
	SKU     string
	Price   string
	Barcode string
}

// Metafield is a namespaced custom product attribute
type Metafield struct {
	Namespace string
	Key       string
	Value     string
}

// QualifiedKey returns "namespace.key", defaulting the parts the platform
// left empty.
func (m Metafield) QualifiedKey() string {
	ns := m.Namespace
	if ns == "" {
		ns = "custom"
	}
	key := m.Key
	if key == "" {
		key = "unknown"
	}
	return fmt.Sprintf("%s.%s", ns, key)
}

// ---------------------------------------------------------------------------
// CommercePlatform Port
// ---------------------------------------------------------------------------

// OrderQuery filters a storefront order listing
type OrderQuery struct {
	CreatedAtMin *time.Time
	CreatedAtMax *time.Time
	Status       string
	Limit        int
}

// CommercePlatform is the port for reading from the storefront
type CommercePlatform interface {
	// ListOrders returns every order matching the query, following pagination
	ListOrders(ctx context.Context, query OrderQuery) ([]CommerceOrder, error)

	// GetOrdersByIDs fetches the given orders in batches of MaxOrderIDsPerRequest
	GetOrdersByIDs(ctx context.Context, ids []int64) ([]CommerceOrder, error)

	// GetVariantCost resolves the unit cost of a variant through its inventory item.
	// A nil cost with a nil error means the platform has no cost for the variant.
	GetVariantCost(ctx context.Context, variantID int64) (*decimal.Decimal, error)

	// GetCustomerOrderHistory lists all orders placed by a customer
	GetCustomerOrderHistory(ctx context.Context, customerID int64) ([]CustomerOrderSummary, error)

	// ListProducts lists products with the given status
	ListProducts(ctx context.Context, status string) ([]Product, error)

	// GetProductMetafields lists the metafields of a product
	GetProductMetafields(ctx context.Context, productID int64) ([]Metafield, error)

	// TestConnection reports whether the platform answers an authenticated request
	TestConnection(ctx context.Context) bool
}

package ecommerce

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Shopify API Response Types
// ---------------------------------------------------------------------------

// ShopifyOrdersResponse wraps orders.json
type ShopifyOrdersResponse struct {
	Orders []ShopifyOrder `json:"orders"`
}

// ShopifyOrder is an order as returned by the Admin REST API.
// Money fields are decimal strings; an absent field is nil.
type ShopifyOrder struct {
	ID                    int64                  `json:"id"`
	Name                  string                 `json:"name"`
	CreatedAt             string                 `json:"created_at"`
	ProcessedAt           string                 `json:"processed_at"`
	Currency              string                 `json:"currency"`
	FinancialStatus       string                 `json:"financial_status"`
	TotalPrice            *string                `json:"total_price"`
	TotalTax              *string                `json:"total_tax"`
	SubtotalPrice         *string                `json:"subtotal_price"`
	TotalDiscounts        *string                `json:"total_discounts"`
	CurrentSubtotalPrice  *string                `json:"current_subtotal_price"`
	CurrentTotalDiscounts *string                `json:"current_total_discounts"`
	TotalShippingPriceSet *ShopifyPriceSet       `json:"total_shipping_price_set"`
	LineItems             []ShopifyLineItem      `json:"line_items"`
	Fulfillments          []ShopifyFulfillment   `json:"fulfillments"`
	Customer              *ShopifyCustomer       `json:"customer"`
	ShippingAddress       *ShopifyAddress        `json:"shipping_address"`
	BillingAddress        *ShopifyAddress        `json:"billing_address"`
	DiscountCodes         []ShopifyDiscountCode  `json:"discount_codes"`
	DiscountApplications  []json.RawMessage      `json:"discount_applications"`
}

// ShopifyPriceSet carries an amount in shop and presentment currency
type ShopifyPriceSet struct {
	ShopMoney ShopifyMoney `json:"shop_money"`
}

// ShopifyMoney is an amount with its currency
type ShopifyMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// ShopifyLineItem is an order line
type ShopifyLineItem struct {
	ID                  int64                       `json:"id"`
	SKU                 *string                     `json:"sku"`
	VariantID           *int64                      `json:"variant_id"`
	Title               string                      `json:"title"`
	Quantity            int                         `json:"quantity"`
	Price               string                      `json:"price"`
	DiscountAllocations []ShopifyDiscountAllocation `json:"discount_allocations"`
}

// ShopifyDiscountAllocation is the share of a discount applied to a line
type ShopifyDiscountAllocation struct {
	Amount string `json:"amount"`
}

// ShopifyDiscountCode is a code redeemed on an order
type ShopifyDiscountCode struct {
	Code   string `json:"code"`
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// ShopifyFulfillment is a shipment of an order
type ShopifyFulfillment struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
}

// ShopifyCustomer is the customer embedded in an order
type ShopifyCustomer struct {
	ID          int64              `json:"id"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	OrdersCount ShopifyOptionalInt `json:"orders_count"`
}

// ordersCount defaults an omitted count to 1. An explicit null stays nil.
func (c *ShopifyCustomer) ordersCount() *int {
	if !c.OrdersCount.Present {
		one := 1
		return &one
	}
	return c.OrdersCount.Value
}

// ShopifyOptionalInt tells an omitted field from an explicit null
type ShopifyOptionalInt struct {
	Present bool
	Value   *int
}

// UnmarshalJSON marks the field present; null leaves Value nil
func (o *ShopifyOptionalInt) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil
	if string(data) == "null" {
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ShopifyAddress is a shipping or billing address
type ShopifyAddress struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ShopifyVariantResponse wraps variants/{id}.json
type ShopifyVariantResponse struct {
	Variant struct {
		ID              int64  `json:"id"`
		InventoryItemID *int64 `json:"inventory_item_id"`
	} `json:"variant"`
}

// ShopifyInventoryItemResponse wraps inventory_items/{id}.json
type ShopifyInventoryItemResponse struct {
	InventoryItem struct {
		ID   int64   `json:"id"`
		Cost *string `json:"cost"`
	} `json:"inventory_item"`
}

// ShopifyProductsResponse wraps products.json
type ShopifyProductsResponse struct {
	Products []ShopifyProduct `json:"products"`
}

// ShopifyProduct is a catalog product
type ShopifyProduct struct {
	ID          int64            `json:"id"`
	Handle      string           `json:"handle"`
	Title       string           `json:"title"`
	Status      string           `json:"status"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Tags        string           `json:"tags"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
	PublishedAt *string          `json:"published_at"`
	Images      []ShopifyImage   `json:"images"`
	Variants    []ShopifyVariant `json:"variants"`
}

// ShopifyImage is a product image
type ShopifyImage struct {
	Src string `json:"src"`
}

// ShopifyVariant is a product variant
type ShopifyVariant struct {
	ID      int64   `json:"id"`
	SKU     *string `json:"sku"`
	Price   string  `json:"price"`
	Barcode *string `json:"barcode"`
}

// ShopifyMetafieldsResponse wraps products/{id}/metafields.json
type ShopifyMetafieldsResponse struct {
	Metafields []ShopifyMetafield `json:"metafields"`
}

// ShopifyMetafield is a product metafield. Value can be any JSON type.
type ShopifyMetafield struct {
	Namespace string          `json:"namespace"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// ToCommerceOrder converts the API order into the domain order
func (o *ShopifyOrder) ToCommerceOrder() integration.CommerceOrder {
	order := integration.CommerceOrder{
		ID:                    o.ID,
		Name:                  o.Name,
		CreatedAt:             ParseTimestamp(o.CreatedAt),
		ProcessedAt:           ParseTimestamp(o.ProcessedAt),
		Currency:              o.Currency,
		FinancialStatus:       o.FinancialStatus,
		TotalPrice:            decimalOrZero(o.TotalPrice),
		TotalTax:              decimalOrZero(o.TotalTax),
		SubtotalPrice:         optionalDecimal(o.SubtotalPrice),
		TotalDiscounts:        optionalDecimal(o.TotalDiscounts),
		CurrentSubtotalPrice:  optionalDecimal(o.CurrentSubtotalPrice),
		CurrentTotalDiscounts: optionalDecimal(o.CurrentTotalDiscounts),
		LineItems:             make([]integration.CommerceLineItem, 0, len(o.LineItems)),
		Fulfillments:          make([]integration.Fulfillment, 0, len(o.Fulfillments)),
	}

	if o.TotalShippingPriceSet != nil && o.TotalShippingPriceSet.ShopMoney.Amount != "" {
		order.ShippingPaid = optionalDecimal(&o.TotalShippingPriceSet.ShopMoney.Amount)
	}

	for _, li := range o.LineItems {
		item := integration.CommerceLineItem{
			Title:    li.Title,
			Quantity: li.Quantity,
			Price:    ParseDecimal(li.Price),
		}
		if li.SKU != nil {
			item.SKU = strings.TrimSpace(*li.SKU)
		}
		if li.VariantID != nil {
			item.VariantID = *li.VariantID
		}
		for _, da := range li.DiscountAllocations {
			item.DiscountAllocations = append(item.DiscountAllocations, ParseDecimal(da.Amount))
		}
		order.LineItems = append(order.LineItems, item)
	}

	for _, f := range o.Fulfillments {
		order.Fulfillments = append(order.Fulfillments, integration.Fulfillment{
			ID:        f.ID,
			CreatedAt: ParseTimestamp(f.CreatedAt),
		})
	}

	if o.Customer != nil {
		order.Customer = &integration.CommerceCustomer{
			ID:          o.Customer.ID,
			FirstName:   o.Customer.FirstName,
			LastName:    o.Customer.LastName,
			OrdersCount: o.Customer.ordersCount(),
		}
	}
	order.ShippingAddress = o.ShippingAddress.toPostalAddress()
	order.BillingAddress = o.BillingAddress.toPostalAddress()

	return order
}

func (a *ShopifyAddress) toPostalAddress() *integration.PostalAddress {
	if a == nil {
		return nil
	}
	return &integration.PostalAddress{Name: a.Name, FirstName: a.FirstName, LastName: a.LastName}
}

// ToProduct converts the API product into the domain product
func (p *ShopifyProduct) ToProduct() integration.Product {
	product := integration.Product{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Status:      p.Status,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.PublishedAt != nil {
		product.PublishedAt = *p.PublishedAt
	}
	for _, img := range p.Images {
		product.Images = append(product.Images, integration.ProductImage{Src: img.Src})
	}
	for _, v := range p.Variants {
		variant := integration.ProductVariant{ID: v.ID, Price: v.Price}
		if v.SKU != nil {
			variant.SKU = *v.SKU
		}
		if v.Barcode != nil {
			variant.Barcode = *v.Barcode
		}
		product.Variants = append(product.Variants, variant)
	}
	return product
}

// ToMetafield converts the API metafield, rendering non-string values as raw JSON
func (m *ShopifyMetafield) ToMetafield() integration.Metafield {
	return integration.Metafield{
		Namespace: m.Namespace,
		Key:       m.Key,
		Value:     metafieldValue(m.Value),
	}
}

func metafieldValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// ParseDecimal parses a decimal string, returning zero on failure
func ParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalOrZero(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return ParseDecimal(*s)
}

func optionalDecimal(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &d
}

// ParseTimestamp parses an ISO 8601 timestamp with offset. Unparsable or
// empty values yield nil.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatInt64(id int64) string {
	return strconv.FormatInt(id, 10)
}

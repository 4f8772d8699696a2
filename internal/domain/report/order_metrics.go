package report

import (
	"context"
	"fmt"
	"time"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "GBP"

var (
	hundred = decimal.NewFromInt(100)
	cent    = decimal.RequireFromString("0.01")
)

// LineCostCalculator prices the cost of goods for a line item
type LineCostCalculator interface {
	CalculateLineCOGS(ctx context.Context, item integration.CommerceLineItem) (cogs decimal.Decimal, hasCost bool, unitCost *decimal.Decimal)
}

// LineItemMetrics is the profitability breakdown of a single order line
type LineItemMetrics struct {
	SKU          string           `json:"sku"`
	VariantID    int64            `json:"variant_id"`
	Title        string           `json:"title"`
	Quantity     int              `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	GrossValue   decimal.Decimal  `json:"gross_value"`   // UnitPrice * Quantity
	LineDiscount decimal.Decimal  `json:"line_discount"` // Allocated share of order discounts
	NetRevenue   decimal.Decimal  `json:"net_revenue"`   // GrossValue - LineDiscount
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	LineCOGS     decimal.Decimal  `json:"line_cogs"`
	HasCost      bool             `json:"has_cost"`
}

// OrderMetrics is the complete profitability breakdown of a dispatched order
type OrderMetrics struct {
	OrderID        int64      `json:"order_id"`
	OrderName      string     `json:"order_name"`
	CustomerID     *int64     `json:"customer_id,omitempty"`
	CustomerName   string     `json:"customer_name"`
	CreatedAt      time.Time  `json:"created_at"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	SentOutAt      time.Time  `json:"sent_out_at"`      // Dispatch date
	SentOutWeekday string     `json:"sent_out_weekday"` // e.g. "Monday"
	SentOutWeek    string     `json:"sent_out_week"`    // ISO week, e.g. "2025-W03"
	Currency       string     `json:"currency"`

	// Revenue
	GrossItemValue decimal.Decimal `json:"gross_item_value"`
	TotalDiscounts decimal.Decimal `json:"total_discounts"`
	NetRevenue     decimal.Decimal `json:"net_revenue"`
	ShippingPaid   decimal.Decimal `json:"shipping_paid"` // Reported, not part of revenue

	// Costs
	COGS               decimal.Decimal      `json:"cogs"`
	PackagingTotal     decimal.Decimal      `json:"packaging_total"`
	BoxType            BoxType              `json:"box_type"`
	BoxMultiplier      int                  `json:"box_multiplier"`
	PackagingBreakdown []PackagingComponent `json:"packaging_breakdown"`

	// Profit
	GrossProfit           decimal.Decimal `json:"gross_profit"` // NetRevenue - COGS
	Contribution          decimal.Decimal `json:"contribution"` // NetRevenue - COGS - PackagingTotal
	GrossMarginPct        decimal.Decimal `json:"gross_margin_pct"`
	ContributionMarginPct decimal.Decimal `json:"contribution_margin_pct"`

	SKUCount   int `json:"sku_count"`
	TotalUnits int `json:"total_units"`

	LineItems        []LineItemMetrics `json:"line_items"`
	MissingCostCount int               `json:"missing_cost_count"`
	MissingCostSKUs  []string          `json:"missing_cost_skus"`

	IsFirstOrder bool `json:"is_first_order"`
}

// ProgressFunc is called after each order with running totals
type ProgressFunc func(current, total, sent, skipped int)

// OrderProcessor turns storefront orders into OrderMetrics
type OrderProcessor struct {
	costs LineCostCalculator
	now   func() time.Time
}

// OrderProcessorOption configures an OrderProcessor
type OrderProcessorOption func(*OrderProcessor)

// WithClock overrides the clock used for orders without a creation time
func WithClock(now func() time.Time) OrderProcessorOption {
	return func(p *OrderProcessor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewOrderProcessor creates an order processor
func NewOrderProcessor(costs LineCostCalculator, opts ...OrderProcessorOption) *OrderProcessor {
	p := &OrderProcessor{
		costs: costs,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessOrder computes metrics for one order. It returns false when the
// order has not been dispatched: no warehouse processed date and no
// storefront fulfillment.
func (p *OrderProcessor) ProcessOrder(ctx context.Context, order *integration.CommerceOrder, index DispatchIndex) (*OrderMetrics, bool) {
	sentOutAt := DispatchDate(order, index)
	if sentOutAt == nil {
		return nil, false
	}

	createdAt := p.now()
	if order.CreatedAt != nil {
		createdAt = *order.CreatedAt
	}
	currency := order.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	customerID, customerName, isFirstOrder := customerDetails(order)

	shippingPaid := decimal.Zero
	if order.ShippingPaid != nil {
		shippingPaid = *order.ShippingPaid
	}

	gross, discounts, net := CalculateOrderRevenue(order)
	lineDiscounts := AllocateLineDiscounts(order)

	totalUnits := 0
	totalCOGS := decimal.Zero
	lines := make([]LineItemMetrics, 0, len(order.LineItems))
	missingSKUs := make([]string, 0)

	for i, item := range order.LineItems {
		totalUnits += item.Quantity

		lineGross := item.GrossValue()
		lineDiscount := lineDiscounts[i]
		cogs, hasCost, unitCost := p.costs.CalculateLineCOGS(ctx, item)
		totalCOGS = totalCOGS.Add(cogs)

		if !hasCost {
			missingSKUs = append(missingSKUs, missingCostLabel(item))
		}

		title := item.Title
		if title == "" {
			title = "Unknown"
		}

		lines = append(lines, LineItemMetrics{
			SKU:          item.SKU,
			VariantID:    item.VariantID,
			Title:        title,
			Quantity:     item.Quantity,
			UnitPrice:    item.Price,
			GrossValue:   lineGross,
			LineDiscount: lineDiscount,
			NetRevenue:   lineGross.Sub(lineDiscount),
			UnitCost:     unitCost,
			LineCOGS:     cogs,
			HasCost:      hasCost,
		})
	}

	packaging := CalculatePackagingCost(totalUnits)
	grossProfit := net.Sub(totalCOGS)
	contribution := grossProfit.Sub(packaging.Total)

	return &OrderMetrics{
		OrderID:               order.ID,
		OrderName:             order.Name,
		CustomerID:            customerID,
		CustomerName:          customerName,
		CreatedAt:             createdAt,
		ProcessedAt:           order.ProcessedAt,
		SentOutAt:             *sentOutAt,
		SentOutWeekday:        sentOutAt.Weekday().String(),
		SentOutWeek:           ISOWeek(*sentOutAt),
		Currency:              currency,
		GrossItemValue:        gross,
		TotalDiscounts:        discounts,
		NetRevenue:            net,
		ShippingPaid:          shippingPaid,
		COGS:                  totalCOGS,
		PackagingTotal:        packaging.Total,
		BoxType:               packaging.BoxType,
		BoxMultiplier:         packaging.Multiplier,
		PackagingBreakdown:    packaging.Breakdown,
		GrossProfit:           grossProfit,
		Contribution:          contribution,
		GrossMarginPct:        PercentOf(grossProfit, net),
		ContributionMarginPct: PercentOf(contribution, net),
		SKUCount:              CountDistinctSKUs(order.LineItems),
		TotalUnits:            totalUnits,
		LineItems:             lines,
		MissingCostCount:      len(missingSKUs),
		MissingCostSKUs:       missingSKUs,
		IsFirstOrder:          isFirstOrder,
	}, true
}

// ProcessOrders computes metrics for every dispatched order and returns the
// results with the input count and the number of undispatched orders skipped.
func (p *OrderProcessor) ProcessOrders(ctx context.Context, orders []integration.CommerceOrder, index DispatchIndex, progress ProgressFunc) ([]OrderMetrics, int, int) {
	total := len(orders)
	results := make([]OrderMetrics, 0, total)
	skipped := 0

	for i := range orders {
		if m, ok := p.ProcessOrder(ctx, &orders[i], index); ok {
			results = append(results, *m)
		} else {
			skipped++
		}

		if progress != nil {
			progress(i+1, total, len(results), skipped)
		}
	}

	return results, total, skipped
}

// DispatchDate returns the warehouse processed date when the order is in the
// index, otherwise the earliest storefront fulfillment, otherwise nil.
func DispatchDate(order *integration.CommerceOrder, index DispatchIndex) *time.Time {
	if info := index.Lookup(order.ID, order.Name); info != nil && info.ProcessedDate != nil {
		return info.ProcessedDate
	}
	return order.EarliestFulfillment()
}

// ISOWeek formats a time as an ISO 8601 week, e.g. "2025-W03"
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// CountDistinctSKUs counts distinct SKUs, using the variant id for lines without one
func CountDistinctSKUs(items []integration.CommerceLineItem) int {
	ids := make(map[string]struct{}, len(items))
	for _, item := range items {
		switch {
		case item.SKU != "":
			ids["sku:"+item.SKU] = struct{}{}
		case item.VariantID != 0:
			ids[fmt.Sprintf("vid:%d", item.VariantID)] = struct{}{}
		}
	}
	return len(ids)
}

// orderDiscount returns current_total_discounts, falling back to total_discounts
func orderDiscount(order *integration.CommerceOrder) decimal.Decimal {
	switch {
	case order.CurrentTotalDiscounts != nil:
		return *order.CurrentTotalDiscounts
	case order.TotalDiscounts != nil:
		return *order.TotalDiscounts
	default:
		return decimal.Zero
	}
}

// CalculateOrderRevenue returns gross item value, total discounts and net revenue.
//
// current_subtotal_price is already net of discounts and edits, so when
// present it is the net revenue and the discount is reconciled to match.
// Otherwise net is subtotal minus discounts, unless the subtotal already has
// the discount applied: gross - subtotal - discount within a cent. That test
// alone decides; the size of the discount does not.
func CalculateOrderRevenue(order *integration.CommerceOrder) (gross, discounts, net decimal.Decimal) {
	gross = decimal.Zero
	for _, item := range order.LineItems {
		gross = gross.Add(item.GrossValue())
	}

	discounts = orderDiscount(order)

	if order.CurrentSubtotalPrice != nil {
		net = *order.CurrentSubtotalPrice
		if calculated := gross.Sub(net); calculated.IsPositive() {
			discounts = calculated
		}
		return gross, discounts, net
	}

	subtotal := gross
	if order.SubtotalPrice != nil {
		subtotal = *order.SubtotalPrice
	}
	net = subtotal.Sub(discounts)

	if discounts.IsPositive() && gross.Sub(subtotal).Sub(discounts).Abs().LessThan(cent) {
		net = subtotal
	}

	return gross, discounts, net
}

// AllocateLineDiscounts returns the discount share of each line, by index.
// Explicit per-line allocations win; otherwise the order discount is split
// in proportion to each line's gross value.
func AllocateLineDiscounts(order *integration.CommerceOrder) []decimal.Decimal {
	items := order.LineItems
	out := make([]decimal.Decimal, len(items))
	for i := range out {
		out[i] = decimal.Zero
	}

	hasAllocations := false
	for i, item := range items {
		if len(item.DiscountAllocations) == 0 {
			continue
		}
		hasAllocations = true
		sum := decimal.Zero
		for _, amount := range item.DiscountAllocations {
			sum = sum.Add(amount)
		}
		out[i] = sum
	}
	if hasAllocations {
		return out
	}

	totalGross := decimal.Zero
	for _, item := range items {
		totalGross = totalGross.Add(item.GrossValue())
	}
	totalDiscount := orderDiscount(order)
	if !totalGross.IsPositive() || !totalDiscount.IsPositive() {
		return out
	}

	for i, item := range items {
		out[i] = totalDiscount.Mul(item.GrossValue()).Div(totalGross)
	}
	return out
}

// PercentOf returns part / whole * 100, or zero when whole is not positive
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// customerDetails picks the customer id, display name and first-order flag.
// The name falls back from the customer record to the shipping address, then
// the billing address.
func customerDetails(order *integration.CommerceOrder) (*int64, string, bool) {
	var customerID *int64
	name := ""
	isFirstOrder := false

	if c := order.Customer; c != nil {
		if c.ID != 0 {
			id := c.ID
			customerID = &id
		}
		name = c.FullName()
		isFirstOrder = c.OrdersCount != nil && *c.OrdersCount == 1
	}
	if name == "" {
		name = order.ShippingAddress.DisplayName()
	}
	if name == "" {
		name = order.BillingAddress.DisplayName()
	}
	if name == "" {
		name = "Unknown"
	}

	return customerID, name, isFirstOrder
}

func missingCostLabel(item integration.CommerceLineItem) string {
	if item.SKU != "" {
		return item.SKU
	}
	if item.VariantID != 0 {
		return fmt.Sprintf("variant:%d", item.VariantID)
	}
	return "unknown"
}

package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
)

// PreviousWeek returns last Monday to Sunday relative to now
func PreviousWeek(now time.Time) report.Window {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	daysSinceMonday := (int(today.Weekday()) + 6) % 7
	thisMonday := today.AddDate(0, 0, -daysSinceMonday)
	return report.Window{Start: thisMonday.AddDate(0, 0, -7), End: thisMonday.AddDate(0, 0, -1)}
}

// PlacedOrderRow is one storefront order created in the window
type PlacedOrderRow struct {
	ID              int64
	Name            string
	FinancialStatus string
	TotalPrice      decimal.Decimal
	Subtotal        decimal.Decimal
	Discounts       decimal.Decimal
	CurrentSubtotal decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
}

// PlacedTotals sums storefront orders created in the window
type PlacedTotals struct {
	Orders          int
	TotalPrice      decimal.Decimal
	Subtotal        decimal.Decimal
	Discounts       decimal.Decimal
	CurrentSubtotal decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
}

// DispatchedTotals sums the dashboard view of orders dispatched in the window
type DispatchedTotals struct {
	LinnworksD2C int
	Processed    int
	Skipped      int
	Gross        decimal.Decimal
	Discounts    decimal.Decimal
	Net          decimal.Decimal
	Shipping     decimal.Decimal
}

// RevenueComparison explains the gap between placed and dispatched revenue
type RevenueComparison struct {
	Difference              decimal.Decimal // Storefront total_price - dashboard net
	NotDispatchedCount      int
	NotDispatchedValue      decimal.Decimal
	DispatchedPlacedEarlier int
	DiscountDifference      decimal.Decimal
}

// RevenueCheckReport compares orders placed in a week against orders
// dispatched in it
type RevenueCheckReport struct {
	Window     report.Window
	Placed     []PlacedOrderRow
	Totals     PlacedTotals
	Dispatched DispatchedTotals
	Comparison RevenueComparison
}

// RevenueCheckService diagnoses storefront vs dashboard revenue differences
type RevenueCheckService struct {
	commerce integration.CommercePlatform
	d2c      *D2CService
}

// NewRevenueCheckService creates the revenue check
func NewRevenueCheckService(commerce integration.CommercePlatform, d2c *D2CService) *RevenueCheckService {
	return &RevenueCheckService{commerce: commerce, d2c: d2c}
}

// Check builds the report for the window
func (s *RevenueCheckService) Check(ctx context.Context, w report.Window) (*RevenueCheckReport, error) {
	from, to := w.Start, w.EndOfDay()
	placed, err := s.commerce.ListOrders(ctx, integration.OrderQuery{
		CreatedAtMin: &from,
		CreatedAtMax: &to,
		Status:       "any",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list placed orders: %w", err)
	}

	dispatched, err := s.d2c.FetchD2COrdersForPeriod(ctx, w)
	if err != nil {
		return nil, err
	}

	r := &RevenueCheckReport{Window: w}
	r.Placed, r.Totals = summarisePlaced(placed)
	r.Dispatched = summariseDispatched(dispatched)

	placedIDs := make(map[int64]bool, len(placed))
	for _, o := range placed {
		placedIDs[o.ID] = true
	}
	dispatchedIDs := make(map[int64]bool, len(dispatched.Orders))
	for _, o := range dispatched.Orders {
		dispatchedIDs[o.OrderID] = true
	}

	c := RevenueComparison{
		Difference:         r.Totals.TotalPrice.Sub(r.Dispatched.Net),
		NotDispatchedValue: decimal.Zero,
		DiscountDifference: r.Totals.Discounts.Sub(r.Dispatched.Discounts),
	}
	for _, row := range r.Placed {
		if !dispatchedIDs[row.ID] {
			c.NotDispatchedCount++
			c.NotDispatchedValue = c.NotDispatchedValue.Add(row.TotalPrice)
		}
	}
	for id := range dispatchedIDs {
		if !placedIDs[id] {
			c.DispatchedPlacedEarlier++
		}
	}
	r.Comparison = c
	return r, nil
}

func summarisePlaced(orders []integration.CommerceOrder) ([]PlacedOrderRow, PlacedTotals) {
	rows := make([]PlacedOrderRow, 0, len(orders))
	t := PlacedTotals{
		Orders:          len(orders),
		TotalPrice:      decimal.Zero,
		Subtotal:        decimal.Zero,
		Discounts:       decimal.Zero,
		CurrentSubtotal: decimal.Zero,
		Shipping:        decimal.Zero,
		Tax:             decimal.Zero,
	}
	for _, o := range orders {
		subtotal := valueOr(o.SubtotalPrice, decimal.Zero)
		row := PlacedOrderRow{
			ID:              o.ID,
			Name:            o.Name,
			FinancialStatus: o.FinancialStatus,
			TotalPrice:      o.TotalPrice,
			Subtotal:        subtotal,
			Discounts:       valueOr(o.TotalDiscounts, decimal.Zero),
			CurrentSubtotal: valueOr(o.CurrentSubtotalPrice, subtotal),
			Shipping:        valueOr(o.ShippingPaid, decimal.Zero),
			Tax:             o.TotalTax,
		}
		if row.FinancialStatus == "" {
			row.FinancialStatus = "unknown"
		}
		rows = append(rows, row)

		t.TotalPrice = t.TotalPrice.Add(row.TotalPrice)
		t.Subtotal = t.Subtotal.Add(row.Subtotal)
		t.Discounts = t.Discounts.Add(row.Discounts)
		t.CurrentSubtotal = t.CurrentSubtotal.Add(row.CurrentSubtotal)
		t.Shipping = t.Shipping.Add(row.Shipping)
		t.Tax = t.Tax.Add(row.Tax)
	}
	return rows, t
}

func summariseDispatched(p *PeriodOrders) DispatchedTotals {
	d := DispatchedTotals{
		LinnworksD2C: p.LinnworksD2C,
		Processed:    len(p.Orders),
		Skipped:      p.Skipped,
		Gross:        decimal.Zero,
		Discounts:    decimal.Zero,
		Net:          decimal.Zero,
		Shipping:     decimal.Zero,
	}
	for _, o := range p.Orders {
		d.Gross = d.Gross.Add(o.GrossItemValue)
		d.Discounts = d.Discounts.Add(o.TotalDiscounts)
		d.Net = d.Net.Add(o.NetRevenue)
		d.Shipping = d.Shipping.Add(o.ShippingPaid)
	}
	return d
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}

func money(d decimal.Decimal) string {
	return "£" + d.StringFixed(2)
}

// WriteText renders the report as plain text
func (r *RevenueCheckReport) WriteText(w io.Writer) error {
	rule := strings.Repeat("=", 60)
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "REVENUE CHECK: %s - %s\n", r.Window.Start.Format("Jan 02"), r.Window.End.Format("Jan 02, 2006"))
	fmt.Fprintln(&b, rule)

	fmt.Fprintf(&b, "\n--- STOREFRONT ORDERS (by created date) ---\n")
	fmt.Fprintf(&b, "Orders placed during this week: %d\n\n", r.Totals.Orders)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Order\tTotal\tSubtotal\tDiscounts\tShipping\tStatus")
	for _, row := range r.Placed {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", row.Name, money(row.TotalPrice), money(row.Subtotal),
			money(row.Discounts), money(row.Shipping), row.FinancialStatus)
	}
	fmt.Fprintf(tw, "TOTALS\t%s\t%s\t%s\t%s\t\n", money(r.Totals.TotalPrice), money(r.Totals.Subtotal),
		money(r.Totals.Discounts), money(r.Totals.Shipping))
	if err := tw.Flush(); err != nil {
		return err
	}

	t := r.Totals
	fmt.Fprintf(&b, "\n--- STOREFRONT BREAKDOWN ---\n")
	fmt.Fprintf(&b, "total_price (what customer paid):      %s\n", money(t.TotalPrice))
	fmt.Fprintf(&b, "subtotal_price (products before disc): %s\n", money(t.Subtotal))
	fmt.Fprintf(&b, "total_discounts:                       %s\n", money(t.Discounts))
	fmt.Fprintf(&b, "current_subtotal_price (net products): %s\n", money(t.CurrentSubtotal))
	fmt.Fprintf(&b, "shipping:                              %s\n", money(t.Shipping))
	fmt.Fprintf(&b, "tax:                                   %s\n", money(t.Tax))
	fmt.Fprintf(&b, "Formula check: subtotal - discounts = %s\n", money(t.Subtotal.Sub(t.Discounts)))
	fmt.Fprintf(&b, "Formula check: subtotal - discounts + shipping + tax = %s\n",
		money(t.Subtotal.Sub(t.Discounts).Add(t.Shipping).Add(t.Tax)))

	d := r.Dispatched
	fmt.Fprintf(&b, "\n--- DASHBOARD ORDERS (by dispatch date) ---\n")
	fmt.Fprintf(&b, "D2C orders dispatched:          %d\n", d.LinnworksD2C)
	fmt.Fprintf(&b, "Orders processed by dashboard:  %d\n", d.Processed)
	fmt.Fprintf(&b, "Orders skipped (not dispatched): %d\n", d.Skipped)
	fmt.Fprintf(&b, "gross_item_value (products):    %s\n", money(d.Gross))
	fmt.Fprintf(&b, "total_discounts:                %s\n", money(d.Discounts))
	fmt.Fprintf(&b, "net_revenue (dashboard):        %s\n", money(d.Net))
	fmt.Fprintf(&b, "shipping_paid (not revenue):    %s\n", money(d.Shipping))

	c := r.Comparison
	fmt.Fprintf(&b, "\n%s\nCOMPARISON\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Storefront total sales (total_price): %s\n", money(t.TotalPrice))
	fmt.Fprintf(&b, "Dashboard net revenue:                %s\n", money(d.Net))
	fmt.Fprintf(&b, "Difference:                           %s\n", money(c.Difference))
	fmt.Fprintf(&b, "\nOrders placed this week but not dispatched yet: %d (%s)\n", c.NotDispatchedCount, money(c.NotDispatchedValue))
	fmt.Fprintf(&b, "Orders dispatched this week but placed earlier: %d\n", c.DispatchedPlacedEarlier)
	fmt.Fprintf(&b, "Shipping (in storefront total, not in dashboard): %s\n", money(t.Shipping))
	fmt.Fprintf(&b, "Tax (in storefront total): %s\n", money(t.Tax))
	fmt.Fprintf(&b, "Discounts: storefront %s, dashboard %s, difference %s\n",
		money(t.Discounts), money(d.Discounts), money(c.DiscountDifference))

	_, err := io.WriteString(w, b.String())
	return err
}

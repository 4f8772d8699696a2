package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/homecooks/profitability/internal/domain/report"
)

var orderColumns = []string{
	"Sent Out", "Weekday", "Week", "Order", "Order ID", "Customer", "First Order",
	"SKUs", "Units", "Box", "Boxes", "Gross Item Value", "Discounts", "Net Revenue",
	"Shipping Paid", "COGS", "Packaging", "Gross Profit", "Contribution",
	"Gross Margin %", "Contribution Margin %", "Missing Costs", "Currency",
}

// OrdersCSVName names the order export of a window
func OrdersCSVName(w WindowResponse) string {
	return fmt.Sprintf("d2c_orders_%s_%s.csv", w.Start, w.End)
}

// RenderOrdersCSV writes order rows as CSV, money to two decimals
func RenderOrdersCSV(rows []report.OrderRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(orderColumns); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.SentOutAt.Format(time.DateOnly),
			r.Weekday,
			r.Week,
			r.OrderName,
			strconv.FormatInt(r.OrderID, 10),
			r.CustomerName,
			strconv.FormatBool(r.IsFirstOrder),
			strconv.Itoa(r.SKUCount),
			strconv.Itoa(r.TotalUnits),
			string(r.BoxType),
			strconv.Itoa(r.BoxMultiplier),
			r.GrossItemValue.StringFixed(2),
			r.TotalDiscounts.StringFixed(2),
			r.NetRevenue.StringFixed(2),
			r.ShippingPaid.StringFixed(2),
			r.COGS.StringFixed(2),
			r.PackagingTotal.StringFixed(2),
			r.GrossProfit.StringFixed(2),
			r.Contribution.StringFixed(2),
			r.GrossMarginPct.StringFixed(1),
			r.ContributionMarginPct.StringFixed(1),
			strconv.Itoa(r.MissingCostCount),
			r.Currency,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write orders csv: %w", err)
	}
	return buf.Bytes(), nil
}

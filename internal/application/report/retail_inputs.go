package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/retail"
	"github.com/homecooks/profitability/internal/infrastructure/config"
)

// RetailCostModelFrom converts the configured wholesale assumptions
func RetailCostModelFrom(c config.RetailCostConfig) retail.CostModel {
	return retail.CostModel{
		FreightPerUnit:     decimal.NewFromFloat(c.FreightPerUnit),
		FreightPerCase:     decimal.NewFromFloat(c.FreightPerCase),
		CasePickingRate:    decimal.NewFromFloat(c.CasePicking),
		OrderProcessingFee: decimal.NewFromFloat(c.OrderProcessing),
		OrderTrackingFee:   decimal.NewFromFloat(c.OrderTracking),
		CaseLabelling:      decimal.NewFromFloat(c.CaseLabelling),
		CommissionRate:     decimal.NewFromFloat(c.CommissionRate),
		SKUCaseCost:        decimal.NewFromFloat(c.SKUCase),
		SleeveX6:           decimal.NewFromFloat(c.SleeveX6),
		CaseProductionCost: decimal.NewFromFloat(c.CaseProduction),
	}
}

// ManualOrdersFrom converts configured manual orders. Dates are server-local
// calendar days. An empty list returns nil, which books the default order.
func ManualOrdersFrom(orders []config.ManualOrderConfig) ([]ManualOrder, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	out := make([]ManualOrder, 0, len(orders))
	for i, o := range orders {
		m := ManualOrder{ManualOrder: retail.ManualOrder{
			Store:     o.Store,
			Reference: o.Reference,
			Qty:       o.Qty,
			Total:     decimal.NewFromFloat(o.Total),
			SKUs:      o.SKUs,
		}}
		if o.Date != "" {
			d, err := time.ParseInLocation("2006-01-02", o.Date, time.Local)
			if err != nil {
				return nil, fmt.Errorf("retail.manual_orders[%d]: invalid date %q: %w", i, o.Date, err)
			}
			m.Date = d
		}
		out = append(out, m)
	}
	return out, nil
}

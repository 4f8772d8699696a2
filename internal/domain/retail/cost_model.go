package retail

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CostModel holds the per-order, per-case and per-unit cost assumptions of a
// wholesale order
type CostModel struct {
	FreightPerUnit     decimal.Decimal `json:"freight_per_unit"`
	FreightPerCase     decimal.Decimal `json:"freight_per_case"`
	CasePickingRate    decimal.Decimal `json:"case_picking_rate"`
	OrderProcessingFee decimal.Decimal `json:"order_processing_fee"`
	OrderTrackingFee   decimal.Decimal `json:"order_tracking_fee"`
	CaseLabelling      decimal.Decimal `json:"case_labelling"`
	CommissionRate     decimal.Decimal `json:"commission_rate"` // Fraction of revenue
	SKUCaseCost        decimal.Decimal `json:"sku_case_cost"`
	SleeveX6           decimal.Decimal `json:"sleeve_x6"`
	CaseProductionCost decimal.Decimal `json:"case_production_cost"`
}

// DefaultCostModel returns the standard wholesale cost assumptions
func DefaultCostModel() CostModel {
	return CostModel{
		FreightPerUnit:     decimal.RequireFromString("0.14"),
		FreightPerCase:     decimal.RequireFromString("0.66"),
		CasePickingRate:    decimal.RequireFromString("0.14"),
		OrderProcessingFee: decimal.RequireFromString("1.09"),
		OrderTrackingFee:   decimal.RequireFromString("0.27"),
		CaseLabelling:      decimal.Zero,
		CommissionRate:     decimal.RequireFromString("0.10"),
		SKUCaseCost:        decimal.RequireFromString("0.10"),
		SleeveX6:           decimal.RequireFromString("0.67"),
		CaseProductionCost: decimal.RequireFromString("15.48"),
	}
}

// perCase sums the costs charged for every case, delivery excluded
func (m CostModel) perCase() decimal.Decimal {
	return m.FreightPerCase.
		Add(m.CasePickingRate).
		Add(m.CaseLabelling).
		Add(m.SKUCaseCost).
		Add(m.SleeveX6)
}

// Profitability is the cost breakdown and profit of a wholesale order
type Profitability struct {
	Revenue      decimal.Decimal `json:"revenue"`
	COGS         decimal.Decimal `json:"cogs"`
	OrderCosts   decimal.Decimal `json:"order_costs"`
	CaseCosts    decimal.Decimal `json:"case_costs"`
	UnitCosts    decimal.Decimal `json:"unit_costs"`
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	Commission   decimal.Decimal `json:"commission"`
	TotalCosts   decimal.Decimal `json:"total_costs"`
	Profit       decimal.Decimal `json:"profit"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
}

// Fulfillment returns order, case and unit handling costs combined
func (p Profitability) Fulfillment() decimal.Decimal {
	return p.OrderCosts.Add(p.CaseCosts).Add(p.UnitCosts)
}

// Calculate prices a wholesale order of the given cases and units
func (m CostModel) Calculate(revenue decimal.Decimal, cases, units int) Profitability {
	c := decimal.NewFromInt(int64(cases))
	u := decimal.NewFromInt(int64(units))

	p := Profitability{
		Revenue:      revenue,
		OrderCosts:   m.OrderProcessingFee.Add(m.OrderTrackingFee),
		CaseCosts:    c.Mul(m.perCase()),
		COGS:         c.Mul(m.CaseProductionCost),
		UnitCosts:    u.Mul(m.FreightPerUnit),
		DeliveryCost: DeliveryCost(cases),
		Commission:   revenue.Mul(m.CommissionRate),
	}
	p.TotalCosts = p.OrderCosts.
		Add(p.CaseCosts).
		Add(p.COGS).
		Add(p.UnitCosts).
		Add(p.DeliveryCost).
		Add(p.Commission)
	p.Profit = revenue.Sub(p.TotalCosts)
	p.MarginPct = decimal.Zero
	if revenue.IsPositive() {
		p.MarginPct = p.Profit.Div(revenue).Mul(hundred)
	}
	return p
}

// ---------------------------------------------------------------------------
// Delivery
// ---------------------------------------------------------------------------

// deliveryCosts is the courier charge by number of cases, index 0 is one case
var deliveryCosts = mustDecimals(
	"24.00", "24.00", "24.00", "24.00", "24.00", "24.00",
	"26.95", "30.80", "30.80", "31.50",
	"34.65", "37.80", "40.95", "44.10", "47.25",
	"48.00", "48.45", "51.30", "54.15", "57.00",
	"57.75", "60.50", "63.25", "66.00", "68.75",
	"68.75", "68.75", "70.00", "72.50", "75.00",
	"77.50", "80.00", "82.50", "85.00", "87.50",
	"87.50", "87.50", "89.30", "91.65", "94.00",
	"96.35", "98.70", "101.05", "103.40", "105.75",
	"108.10", "110.45", "112.80", "115.15", "117.50",
	"109.65", "111.80", "113.95", "116.10", "118.25",
	"120.40", "122.55", "124.70", "126.85", "129.00",
)

var deliveryPerExtraCase = decimal.RequireFromString("2.15")

// DeliveryCost looks up the courier charge for a number of cases. Beyond the
// table each extra case adds 2.15 to the last entry.
func DeliveryCost(cases int) decimal.Decimal {
	if cases <= 0 {
		return decimal.Zero
	}
	if cases <= len(deliveryCosts) {
		return deliveryCosts[cases-1]
	}
	last := deliveryCosts[len(deliveryCosts)-1]
	extra := decimal.NewFromInt(int64(cases - len(deliveryCosts)))
	return last.Add(extra.Mul(deliveryPerExtraCase))
}

// DeliveryBand is one row of the delivery table
type DeliveryBand struct {
	Cases int             `json:"cases"`
	Cost  decimal.Decimal `json:"cost"`
}

// DeliveryTable returns the delivery charges for 1 to 60 cases
func DeliveryTable() []DeliveryBand {
	out := make([]DeliveryBand, len(deliveryCosts))
	for i, cost := range deliveryCosts {
		out[i] = DeliveryBand{Cases: i + 1, Cost: cost}
	}
	return out
}

func mustDecimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

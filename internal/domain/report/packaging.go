package report

import "github.com/shopspring/decimal"

// BoxType is the outer box an order ships in
type BoxType string

const (
	BoxTypeSmall BoxType = "small"
	BoxTypeLarge BoxType = "large"
)

const (
	smallBoxMaxUnits = 10
	largeBoxMaxUnits = 16
)

// PackagingComponent is one priced part of a shipped box
type PackagingComponent struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

// packagingCosts lists per-box component costs in display order
var packagingCosts = map[BoxType][]PackagingComponent{
	BoxTypeSmall: {
		{Name: "Box", Cost: decimal.RequireFromString("1.11")},
		{Name: "Wool", Cost: decimal.RequireFromString("1.00")},
		{Name: "Coolant", Cost: decimal.RequireFromString("0.60")},
		{Name: "Shipping", Cost: decimal.RequireFromString("6.45")},
		{Name: "Pick & Pack", Cost: decimal.RequireFromString("3.50")},
	},
	BoxTypeLarge: {
		{Name: "Box", Cost: decimal.RequireFromString("1.36")},
		{Name: "Wool", Cost: decimal.RequireFromString("1.50")},
		{Name: "Coolant", Cost: decimal.RequireFromString("1.00")},
		{Name: "Shipping", Cost: decimal.RequireFromString("6.45")},
		{Name: "Pick & Pack", Cost: decimal.RequireFromString("3.50")},
	},
}

// PackagingCost is the packaging charge of a single order
type PackagingCost struct {
	Total      decimal.Decimal      `json:"total"`
	BoxType    BoxType              `json:"box_type"`
	Multiplier int                  `json:"multiplier"`
	Breakdown  []PackagingComponent `json:"breakdown"`
}

// DetermineBoxType picks the box for a number of units (sum of quantities).
// Up to 10 units fit a small box, up to 16 a large one, beyond that two large boxes.
func DetermineBoxType(units int) (BoxType, int) {
	switch {
	case units <= smallBoxMaxUnits:
		return BoxTypeSmall, 1
	case units <= largeBoxMaxUnits:
		return BoxTypeLarge, 1
	default:
		return BoxTypeLarge, 2
	}
}

// CalculatePackagingCost prices the packaging for a number of units
func CalculatePackagingCost(units int) PackagingCost {
	boxType, multiplier := DetermineBoxType(units)
	m := decimal.NewFromInt(int64(multiplier))

	base := packagingCosts[boxType]
	breakdown := make([]PackagingComponent, len(base))
	total := decimal.Zero
	for i, c := range base {
		cost := c.Cost.Mul(m)
		breakdown[i] = PackagingComponent{Name: c.Name, Cost: cost}
		total = total.Add(cost)
	}

	return PackagingCost{
		Total:      total,
		BoxType:    boxType,
		Multiplier: multiplier,
		Breakdown:  breakdown,
	}
}

// PackagingTotals returns the single-box total for each box type
func PackagingTotals() map[BoxType]decimal.Decimal {
	totals := make(map[BoxType]decimal.Decimal, len(packagingCosts))
	for boxType, components := range packagingCosts {
		sum := decimal.Zero
		for _, c := range components {
			sum = sum.Add(c.Cost)
		}
		totals[boxType] = sum
	}
	return totals
}

// PackagingComponents returns a copy of the component costs of a box type
func PackagingComponents(boxType BoxType) []PackagingComponent {
	base := packagingCosts[boxType]
	out := make([]PackagingComponent, len(base))
	copy(out, base)
	return out
}

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineBoxType(t *testing.T) {
	tests := []struct {
		units      int
		boxType    BoxType
		multiplier int
	}{
		{0, BoxTypeSmall, 1},
		{1, BoxTypeSmall, 1},
		{10, BoxTypeSmall, 1},
		{11, BoxTypeLarge, 1},
		{16, BoxTypeLarge, 1},
		{17, BoxTypeLarge, 2},
		{40, BoxTypeLarge, 2},
	}

	for _, tt := range tests {
		boxType, multiplier := DetermineBoxType(tt.units)
		assert.Equal(t, tt.boxType, boxType, "units=%d", tt.units)
		assert.Equal(t, tt.multiplier, multiplier, "units=%d", tt.units)
	}
}

func TestCalculatePackagingCost(t *testing.T) {
	tests := []struct {
		name  string
		units int
		total string
	}{
		{"small box", 6, "12.66"},
		{"large box", 12, "13.81"},
		{"two large boxes", 20, "27.62"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := CalculatePackagingCost(tt.units)
			assert.True(t, cost.Total.Equal(dec(tt.total)), "got %s", cost.Total)
			require.Len(t, cost.Breakdown, 5)
			assert.Equal(t, "Box", cost.Breakdown[0].Name)
			assert.Equal(t, "Pick & Pack", cost.Breakdown[4].Name)
		})
	}

	double := CalculatePackagingCost(20)
	assert.True(t, double.Breakdown[0].Cost.Equal(dec("2.72")))
}

func TestPackagingTotals(t *testing.T) {
	totals := PackagingTotals()
	assert.True(t, totals[BoxTypeSmall].Equal(dec("12.66")))
	assert.True(t, totals[BoxTypeLarge].Equal(dec("13.81")))
}

func TestPackagingComponents_ReturnsCopy(t *testing.T) {
	components := PackagingComponents(BoxTypeSmall)
	components[0].Name = "changed"
	assert.Equal(t, "Box", PackagingComponents(BoxTypeSmall)[0].Name)
}

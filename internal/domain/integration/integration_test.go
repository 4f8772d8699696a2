package integration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// Reference Tests
// ---------------------------------------------------------------------------

func TestCleanReference(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		expected string
	}{
		{"plain", "11454306681209", "11454306681209"},
		{"hash prefix", "#1042", "1042"},
		{"padded", "  #1042 ", "1042"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanReference(tt.ref))
		})
	}
}

func TestParseOrderID(t *testing.T) {
	id, ok := ParseOrderID("#11454306681209")
	assert.True(t, ok)
	assert.Equal(t, int64(11454306681209), id)

	_, ok = ParseOrderID("AMZ-1042")
	assert.False(t, ok)
}

func TestIsNoShippingService(t *testing.T) {
	assert.True(t, IsNoShippingService("No Shipping Required"))
	assert.True(t, IsNoShippingService("NO SHIPPING"))
	assert.False(t, IsNoShippingService("DPD Next Day"))
	assert.False(t, IsNoShippingService(""))
}

// ---------------------------------------------------------------------------
// OrderDetail Tests
// ---------------------------------------------------------------------------

func TestOrderDetail_StoreName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		company  string
		expected string
	}{
		{"both differ", "Jane Smith", "Corner Deli", "Corner Deli (Jane Smith)"},
		{"both equal ignoring case", "corner deli", "Corner Deli", "Corner Deli"},
		{"company only", "", "Corner Deli", "Corner Deli"},
		{"name only", "Jane Smith", "", "Jane Smith"},
		{"neither", "", "  ", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := OrderDetail{FullName: tt.fullName, Company: tt.company}
			assert.Equal(t, tt.expected, d.StoreName())
		})
	}
}

func TestOrderDetail_Reference(t *testing.T) {
	assert.Equal(t, "PO-77", OrderDetail{SecondaryReference: "PO-77", ReferenceNum: "1001"}.Reference())
	assert.Equal(t, "1001", OrderDetail{ReferenceNum: "1001"}.Reference())
}

func TestOrderDetail_ProcessedDate(t *testing.T) {
	assert.Equal(t, "2025-03-04", OrderDetail{ProcessedDateTime: "2025-03-04T09:12:00Z"}.ProcessedDate())
	assert.Equal(t, "", OrderDetail{}.ProcessedDate())
}

func TestOrderDetail_LeadingSKUs(t *testing.T) {
	d := OrderDetail{Items: []OrderDetailItem{
		{SKU: "A", Quantity: 2},
		{SKU: "B", Quantity: 1},
		{SKU: "A", Quantity: 3},
		{SKU: "C", Quantity: 1},
		{SKU: "D", Quantity: 1},
		{SKU: "E", Quantity: 1},
	}}

	assert.Equal(t, []string{"A", "B", "C", "D"}, d.LeadingSKUs())
	assert.Equal(t, 9, d.TotalQuantity())
}

// ---------------------------------------------------------------------------
// CommerceOrder Tests
// ---------------------------------------------------------------------------

func TestCommerceOrder_EarliestFulfillment(t *testing.T) {
	early := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 9, 9, 0, 0, 0, time.UTC)

	order := CommerceOrder{Fulfillments: []Fulfillment{
		{ID: 1, CreatedAt: &late},
		{ID: 2},
		{ID: 3, CreatedAt: &early},
	}}
	assert.Equal(t, early, *order.EarliestFulfillment())

	assert.Nil(t, (&CommerceOrder{}).EarliestFulfillment())
}

func TestPostalAddress_DisplayName(t *testing.T) {
	var nilAddr *PostalAddress
	assert.Equal(t, "", nilAddr.DisplayName())
	assert.Equal(t, "J Smith", (&PostalAddress{Name: "J Smith", FirstName: "Jane"}).DisplayName())
	assert.Equal(t, "Jane Smith", (&PostalAddress{FirstName: "Jane", LastName: "Smith"}).DisplayName())
}

func TestCommerceLineItem_GrossValue(t *testing.T) {
	item := CommerceLineItem{Price: decimal.RequireFromString("4.50"), Quantity: 3}
	assert.True(t, item.GrossValue().Equal(decimal.RequireFromString("13.50")))
}

func TestMetafield_QualifiedKey(t *testing.T) {
	assert.Equal(t, "custom.allergens", Metafield{Key: "allergens"}.QualifiedKey())
	assert.Equal(t, "nutrition.unknown", Metafield{Namespace: "nutrition"}.QualifiedKey())
}

// ---------------------------------------------------------------------------
// SheetTable Tests
// ---------------------------------------------------------------------------

func TestSheetTable_Cell(t *testing.T) {
	table := &SheetTable{
		Header: []string{"Product Name", "01/02/2025"},
		Rows:   [][]string{{"Lasagne", " 4 "}, {"Curry"}},
	}

	assert.Equal(t, "4", table.Cell(0, 1))
	assert.Equal(t, "", table.Cell(1, 1))
	assert.Equal(t, "", table.Cell(5, 0))
	assert.Equal(t, 1, table.ColumnIndex("01/02/2025"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
}

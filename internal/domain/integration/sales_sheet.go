package integration

import (
	"context"
	"strings"
)

// SheetTable is a published spreadsheet tab: a header row plus data rows.
// Rows may be ragged.
type SheetTable struct {
	Header []string
	Rows   [][]string
}

// Cell returns the value at a data row and column, or "" when out of range
func (t *SheetTable) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// ColumnIndex returns the index of a header column, or -1
func (t *SheetTable) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// SalesSheetSource is the port for the published retail sales spreadsheet
type SalesSheetSource interface {
	// FetchSummary returns the dashboard summary tab
	FetchSummary(ctx context.Context) (*SheetTable, error)

	// FetchRawSales returns the per-product daily sales tab
	FetchRawSales(ctx context.Context) (*SheetTable, error)
}

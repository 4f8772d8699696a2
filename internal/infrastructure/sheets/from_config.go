package sheets

import (
	"github.com/homecooks/profitability/internal/infrastructure/config"
)

// GoPuffSheetConfigFrom maps the application configuration onto the source's
func GoPuffSheetConfigFrom(c config.GoPuffConfig) *GoPuffSheetConfig {
	sc := DefaultGoPuffSheetConfig()
	if c.SheetID != "" {
		sc.SheetID = c.SheetID
	}
	if c.SummaryGID != "" {
		sc.SummaryGID = c.SummaryGID
	}
	if c.RawSalesGID != "" {
		sc.RawSalesGID = c.RawSalesGID
	}
	return sc
}

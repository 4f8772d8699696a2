package ecommerce

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Linnworks API Types
// ---------------------------------------------------------------------------

// LinnworksAuthResponse is the AuthorizeByApplication response
type LinnworksAuthResponse struct {
	Token  string `json:"Token"`
	Server string `json:"Server"`
}

// LinnworksProcessedPage is a page of SearchProcessedOrdersPaged
type LinnworksProcessedPage struct {
	Data         []LinnworksProcessedOrder `json:"Data"`
	TotalEntries int                       `json:"TotalEntries"`
	PageNumber   int                       `json:"PageNumber"`
	TotalPages   int                       `json:"TotalPages"`
}

// LinnworksProcessedOrder is a processed order search row
type LinnworksProcessedOrder struct {
	PkOrderID         string          `json:"pkOrderID"`
	ReferenceNum      string          `json:"ReferenceNum"`
	ProcessedOn       string          `json:"dProcessedOn"`
	PostalServiceName string          `json:"PostalServiceName"`
	FullName          string          `json:"cFullName"`
	Company           string          `json:"cCompany"`
	TotalCharge       json.Number     `json:"fTotalCharge"`
	Items             json.RawMessage `json:"nItems"`
}

// LinnworksOrderDetail is a GetOrdersById record
type LinnworksOrderDetail struct {
	OrderID           string `json:"OrderId"`
	ProcessedDateTime string `json:"ProcessedDateTime"`
	GeneralInfo       struct {
		ReferenceNum       string  `json:"ReferenceNum"`
		SecondaryReference *string `json:"SecondaryReference"`
	} `json:"GeneralInfo"`
	CustomerInfo struct {
		Address struct {
			FullName string `json:"FullName"`
			Company  string `json:"Company"`
		} `json:"Address"`
	} `json:"CustomerInfo"`
	TotalsInfo struct {
		TotalCharge json.Number `json:"TotalCharge"`
	} `json:"TotalsInfo"`
	Items []struct {
		SKU      string `json:"SKU"`
		Quantity int    `json:"Quantity"`
	} `json:"Items"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// ToProcessedOrder converts a search row into the domain type
func (o *LinnworksProcessedOrder) ToProcessedOrder() integration.ProcessedOrder {
	return integration.ProcessedOrder{
		PkOrderID:         o.PkOrderID,
		ReferenceNum:      o.ReferenceNum,
		ProcessedOn:       ParseLinnworksDate(o.ProcessedOn),
		PostalServiceName: o.PostalServiceName,
		FullName:          o.FullName,
		Company:           o.Company,
		TotalCharge:       numberToDecimal(o.TotalCharge),
		ItemCount:         rawInt(o.Items),
	}
}

// ToOrderDetail converts a detail record into the domain type
func (d *LinnworksOrderDetail) ToOrderDetail() integration.OrderDetail {
	detail := integration.OrderDetail{
		PkOrderID:         d.OrderID,
		FullName:          d.CustomerInfo.Address.FullName,
		Company:           d.CustomerInfo.Address.Company,
		ReferenceNum:      d.GeneralInfo.ReferenceNum,
		ProcessedDateTime: d.ProcessedDateTime,
		TotalCharge:       numberToDecimal(d.TotalsInfo.TotalCharge),
		Items:             make([]integration.OrderDetailItem, 0, len(d.Items)),
	}
	if d.GeneralInfo.SecondaryReference != nil {
		detail.SecondaryReference = *d.GeneralInfo.SecondaryReference
	}
	for _, item := range d.Items {
		detail.Items = append(detail.Items, integration.OrderDetailItem{SKU: item.SKU, Quantity: item.Quantity})
	}
	return detail
}

var linnworksDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLinnworksDate parses a warehouse timestamp; zone-less values are UTC.
// Empty or unreadable values yield nil.
func ParseLinnworksDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range linnworksDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func numberToDecimal(n json.Number) decimal.Decimal {
	return ParseDecimal(n.String())
}

// rawInt reads an integer that may arrive as a number or a numeric string
func rawInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		n = json.Number(s)
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}

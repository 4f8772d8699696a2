package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// DispatchInfo is what the warehouse knows about a dispatched order
type DispatchInfo struct {
	ProcessedDate  *time.Time      `json:"processed_date,omitempty"`
	ShippingMethod string          `json:"shipping_method"`
	CustomerName   string          `json:"customer_name"`
	TotalCharge    decimal.Decimal `json:"total_charge"`
	NumItems       int             `json:"num_items"`
}

// DispatchIndex maps order references to warehouse dispatch info.
// The warehouse stores the storefront order id as its reference, but older
// records carry the order name ("#1042"), so each record is reachable by
// several keys.
type DispatchIndex map[string]*DispatchInfo

// BuildDispatchIndex indexes processed orders by raw reference, cleaned
// reference and, when numeric, the integer form of the cleaned reference.
func BuildDispatchIndex(orders []integration.ProcessedOrder) DispatchIndex {
	index := make(DispatchIndex, len(orders)*2)
	for _, o := range orders {
		if o.ReferenceNum == "" {
			continue
		}

		info := &DispatchInfo{
			ProcessedDate:  o.ProcessedOn,
			ShippingMethod: o.PostalServiceName,
			CustomerName:   o.FullName,
			TotalCharge:    o.TotalCharge,
			NumItems:       o.ItemCount,
		}

		index[o.ReferenceNum] = info
		clean := o.CleanReference()
		index[clean] = info
		if id, ok := integration.ParseOrderID(clean); ok {
			index[strconv.FormatInt(id, 10)] = info
		}
	}
	return index
}

// Lookup finds dispatch info for a storefront order by id, then by cleaned
// order name, then by raw order name.
func (idx DispatchIndex) Lookup(orderID int64, orderName string) *DispatchInfo {
	if len(idx) == 0 {
		return nil
	}
	if info, ok := idx[strconv.FormatInt(orderID, 10)]; ok {
		return info
	}
	if clean := integration.CleanReference(orderName); clean != "" {
		if info, ok := idx[clean]; ok {
			return info
		}
	}
	if orderName != "" {
		if info, ok := idx[orderName]; ok {
			return info
		}
	}
	return nil
}

// ShopifyOrderIDs returns the sorted distinct storefront ids referenced by
// processed orders. Non-numeric references are skipped.
func ShopifyOrderIDs(orders []integration.ProcessedOrder) []int64 {
	seen := make(map[int64]struct{}, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		id, ok := integration.ParseOrderID(o.ReferenceNum)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FilterD2C keeps orders that were shipped to consumers
func FilterD2C(orders []integration.ProcessedOrder) []integration.ProcessedOrder {
	out := make([]integration.ProcessedOrder, 0, len(orders))
	for _, o := range orders {
		if !o.IsRetail() {
			out = append(out, o)
		}
	}
	return out
}

// FilterRetail keeps wholesale orders
func FilterRetail(orders []integration.ProcessedOrder) []integration.ProcessedOrder {
	out := make([]integration.ProcessedOrder, 0)
	for _, o := range orders {
		if o.IsRetail() {
			out = append(out, o)
		}
	}
	return out
}

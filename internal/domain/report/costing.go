package report

import (
	"context"
	"sync/atomic"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// VariantCostLookup resolves the unit cost of a variant from the storefront
type VariantCostLookup interface {
	GetVariantCost(ctx context.Context, variantID int64) (*decimal.Decimal, error)
}

// CostStore caches variant costs. A stored nil cost records a variant known
// to have no cost, so it is not looked up again until it expires.
type CostStore interface {
	// Get returns the cached cost and whether the variant was cached at all
	Get(ctx context.Context, variantID int64) (*decimal.Decimal, bool, error)

	// Set caches a cost, nil included
	Set(ctx context.Context, variantID int64, cost *decimal.Decimal) error

	// Clear drops every cached cost
	Clear(ctx context.Context) error

	// MissingVariants lists the variants cached without a cost
	MissingVariants(ctx context.Context) ([]int64, error)
}

// CostLookupResult is the outcome of a variant cost lookup
type CostLookupResult struct {
	Cost      *decimal.Decimal
	Found     bool
	SKU       string
	VariantID int64
}

// CostingStats counts cache behaviour since the service was created
type CostingStats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	LookupErrors int64 `json:"lookup_errors"`
}

// CostingService looks up and caches per-unit variant costs
type CostingService struct {
	lookup VariantCostLookup
	store  CostStore

	hits         atomic.Int64
	misses       atomic.Int64
	lookupErrors atomic.Int64
}

// NewCostingService creates a costing service over a lookup and a cache
func NewCostingService(lookup VariantCostLookup, store CostStore) *CostingService {
	return &CostingService{
		lookup: lookup,
		store:  store,
	}
}

// GetVariantCost returns the cost of a variant, consulting the cache first.
// Failed lookups count as missing but are not cached, so the next call retries.
func (s *CostingService) GetVariantCost(ctx context.Context, variantID int64) CostLookupResult {
	if variantID == 0 {
		return CostLookupResult{VariantID: variantID}
	}

	if cost, ok, err := s.store.Get(ctx, variantID); err == nil && ok {
		s.hits.Add(1)
		return CostLookupResult{Cost: cost, Found: cost != nil, VariantID: variantID}
	}
	s.misses.Add(1)

	cost, err := s.lookup.GetVariantCost(ctx, variantID)
	if err != nil {
		s.lookupErrors.Add(1)
		return CostLookupResult{VariantID: variantID}
	}

	// A failed cache write only costs a repeat lookup later
	_ = s.store.Set(ctx, variantID, cost)

	return CostLookupResult{Cost: cost, Found: cost != nil, VariantID: variantID}
}

// GetLineItemCost returns the cost of a line item's variant, tagged with its SKU
func (s *CostingService) GetLineItemCost(ctx context.Context, item integration.CommerceLineItem) CostLookupResult {
	result := s.GetVariantCost(ctx, item.VariantID)
	result.SKU = item.SKU
	result.VariantID = item.VariantID
	return result
}

// CalculateLineCOGS returns unit cost * quantity for a line item.
// When the cost is missing the COGS is zero and hasCost is false.
func (s *CostingService) CalculateLineCOGS(ctx context.Context, item integration.CommerceLineItem) (cogs decimal.Decimal, hasCost bool, unitCost *decimal.Decimal) {
	result := s.GetLineItemCost(ctx, item)
	if !result.Found || result.Cost == nil {
		return decimal.Zero, false, nil
	}
	cost := *result.Cost
	return cost.Mul(decimal.NewFromInt(int64(item.Quantity))), true, &cost
}

// ClearCache drops all cached costs
func (s *CostingService) ClearCache(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// MissingVariants lists variants cached without a cost
func (s *CostingService) MissingVariants(ctx context.Context) ([]int64, error) {
	return s.store.MissingVariants(ctx)
}

// Stats returns cache hit/miss counters
func (s *CostingService) Stats() CostingStats {
	return CostingStats{
		Hits:         s.hits.Load(),
		Misses:       s.misses.Load(),
		LookupErrors: s.lookupErrors.Load(),
	}
}

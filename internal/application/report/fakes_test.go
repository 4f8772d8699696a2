package report

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/integration"
)

var errUpstream = errors.New("boom")

func fixedNow() time.Time {
	return time.Date(2025, 9, 17, 10, 0, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

// ---------------------------------------------------------------------------
// Warehouse
// ---------------------------------------------------------------------------

type fakeFulfillment struct {
	mu          sync.Mutex
	processed   []integration.ProcessedOrder
	details     map[string]integration.OrderDetail
	searchErr   error
	searchCalls int
	detailCalls int
}

func (f *fakeFulfillment) Authenticate(ctx context.Context) error { return nil }

func (f *fakeFulfillment) SearchProcessedOrders(ctx context.Context, from, to time.Time) ([]integration.ProcessedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	last := to.AddDate(0, 0, 1)
	out := make([]integration.ProcessedOrder, 0)
	for _, o := range f.processed {
		if o.ProcessedOn == nil {
			continue
		}
		if !o.ProcessedOn.Before(from) && o.ProcessedOn.Before(last) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeFulfillment) GetOrdersByID(ctx context.Context, pkOrderIDs []string) ([]integration.OrderDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	out := make([]integration.OrderDetail, 0, len(pkOrderIDs))
	for _, id := range pkOrderIDs {
		if d, ok := f.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Storefront
// ---------------------------------------------------------------------------

type fakeCommerce struct {
	mu          sync.Mutex
	orders      map[int64]integration.CommerceOrder
	placed      []integration.CommerceOrder
	products    []integration.Product
	metafields  map[int64][]integration.Metafield
	metaErr     map[int64]error
	byIDsCalls  int
	lastQuery   integration.OrderQuery
	byIDsErr    error
	listProdErr error
}

func (f *fakeCommerce) ListOrders(ctx context.Context, query integration.OrderQuery) ([]integration.CommerceOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	return f.placed, nil
}

func (f *fakeCommerce) GetOrdersByIDs(ctx context.Context, ids []int64) ([]integration.CommerceOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDsCalls++
	if f.byIDsErr != nil {
		return nil, f.byIDsErr
	}
	out := make([]integration.CommerceOrder, 0, len(ids))
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeCommerce) GetVariantCost(ctx context.Context, variantID int64) (*decimal.Decimal, error) {
	return nil, nil
}

func (f *fakeCommerce) GetCustomerOrderHistory(ctx context.Context, customerID int64) ([]integration.CustomerOrderSummary, error) {
	return nil, nil
}

func (f *fakeCommerce) ListProducts(ctx context.Context, status string) ([]integration.Product, error) {
	if f.listProdErr != nil {
		return nil, f.listProdErr
	}
	return f.products, nil
}

func (f *fakeCommerce) GetProductMetafields(ctx context.Context, productID int64) ([]integration.Metafield, error) {
	if err := f.metaErr[productID]; err != nil {
		return nil, err
	}
	return f.metafields[productID], nil
}

func (f *fakeCommerce) TestConnection(ctx context.Context) bool { return true }

// fakeCosts prices every unit of a variant at a fixed cost
type fakeCosts struct {
	unit map[int64]decimal.Decimal
}

func (f fakeCosts) CalculateLineCOGS(ctx context.Context, item integration.CommerceLineItem) (decimal.Decimal, bool, *decimal.Decimal) {
	c, ok := f.unit[item.VariantID]
	if !ok {
		return decimal.Zero, false, nil
	}
	return c.Mul(decimal.NewFromInt(int64(item.Quantity))), true, &c
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

type fakeSubscriptions struct {
	mu    sync.Mutex
	pages map[integration.SubscriptionStatus][][]integration.Subscription
	// full returns a full page for every request of that status
	full  map[integration.SubscriptionStatus]bool
	calls map[integration.SubscriptionStatus]int
	err   error
}

func (f *fakeSubscriptions) ListSubscriptions(ctx context.Context, status integration.SubscriptionStatus, page, size int) ([]integration.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[integration.SubscriptionStatus]int)
	}
	f.calls[status]++
	if f.err != nil {
		return nil, f.err
	}
	if f.full[status] {
		return makeSubscriptions(size, nil), nil
	}
	pages := f.pages[status]
	if page >= len(pages) {
		return nil, nil
	}
	return pages[page], nil
}

func makeSubscriptions(n int, created *time.Time) []integration.Subscription {
	out := make([]integration.Subscription, n)
	for i := range out {
		out[i] = integration.Subscription{ID: int64(i + 1), Status: "ACTIVE", CreatedAt: created}
	}
	return out
}

// ---------------------------------------------------------------------------
// Sheets and sinks
// ---------------------------------------------------------------------------

type fakeSheets struct {
	summary *integration.SheetTable
	raw     *integration.SheetTable
	err     error
}

func (f fakeSheets) FetchSummary(ctx context.Context) (*integration.SheetTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f fakeSheets) FetchRawSales(ctx context.Context) (*integration.SheetTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

type memorySink struct {
	files map[string][]byte
	err   error
}

func (m *memorySink) Export(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = data
	return "mem://" + name, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

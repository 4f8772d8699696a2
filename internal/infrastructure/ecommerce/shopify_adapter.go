package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from a platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// shopifyPageLimit is the largest page the Admin API returns
const shopifyPageLimit = 250

// shopifyOrderFields limits order payloads to what the metrics pipeline reads
const shopifyOrderFields = "id,name,created_at,processed_at,total_price,total_discounts,subtotal_price," +
	"total_shipping_price_set,total_tax,currency,current_subtotal_price,current_total_discounts," +
	"line_items,fulfillments,discount_codes,discount_applications,customer,shipping_address,billing_address"

var linkURLPattern = regexp.MustCompile(`<([^>]+)>`)

// ShopifyAdapter implements integration.CommercePlatform against the Shopify Admin REST API
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// ShopifyOption customizes a ShopifyAdapter
type ShopifyOption func(*ShopifyAdapter)

// WithShopifyLogger sets the adapter logger
func WithShopifyLogger(logger *zap.Logger) ShopifyOption {
	return func(a *ShopifyAdapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithShopifyHTTPClient replaces the HTTP client
func WithShopifyHTTPClient(client *http.Client) ShopifyOption {
	return func(a *ShopifyAdapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// NewShopifyAdapter creates a new Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig, opts ...ShopifyOption) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &ShopifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		logger:  zap.NewNop(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// ListOrders returns every order matching the query, following Link pagination
func (a *ShopifyAdapter) ListOrders(ctx context.Context, query integration.OrderQuery) ([]integration.CommerceOrder, error) {
	params := url.Values{}
	status := query.Status
	if status == "" {
		status = "any"
	}
	params.Set("status", status)
	limit := query.Limit
	if limit <= 0 || limit > shopifyPageLimit {
		limit = shopifyPageLimit
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", shopifyOrderFields)
	if query.CreatedAtMin != nil {
		params.Set("created_at_min", query.CreatedAtMin.Format(time.RFC3339))
	}
	if query.CreatedAtMax != nil {
		params.Set("created_at_max", query.CreatedAtMax.Format(time.RFC3339))
	}

	orders := make([]integration.CommerceOrder, 0)
	err := a.paginate(ctx, "orders.json", params, func(body []byte) error {
		var resp ShopifyOrdersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
		}
		for i := range resp.Orders {
			orders = append(orders, resp.Orders[i].ToCommerceOrder())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Fetched storefront orders", zap.Int("count", len(orders)))
	return orders, nil
}

// GetOrdersByIDs fetches orders in batches. A failed batch is logged and skipped.
func (a *ShopifyAdapter) GetOrdersByIDs(ctx context.Context, ids []int64) ([]integration.CommerceOrder, error) {
	orders := make([]integration.CommerceOrder, 0, len(ids))

	for start := 0; start < len(ids); start += integration.MaxOrderIDsPerRequest {
		end := min(start+integration.MaxOrderIDsPerRequest, len(ids))
		batch := ids[start:end]

		idStrings := make([]string, len(batch))
		for i, id := range batch {
			idStrings[i] = formatInt64(id)
		}

		params := url.Values{}
		params.Set("ids", strings.Join(idStrings, ","))
		params.Set("status", "any")
		params.Set("limit", strconv.Itoa(integration.MaxOrderIDsPerRequest))
		params.Set("fields", shopifyOrderFields)

		body, status, err := a.get(ctx, a.endpoint("orders.json", params))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("Order batch failed", zap.Int("batch_start", start), zap.Error(err))
			continue
		}
		if status != http.StatusOK {
			a.logger.Warn("Order batch failed", zap.Int("batch_start", start), zap.Int("status", status))
			continue
		}

		var resp ShopifyOrdersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			a.logger.Warn("Order batch unreadable", zap.Int("batch_start", start), zap.Error(err))
			continue
		}
		for i := range resp.Orders {
			orders = append(orders, resp.Orders[i].ToCommerceOrder())
		}
	}

	return orders, nil
}

// GetCustomerOrderHistory lists all orders placed by a customer
func (a *ShopifyAdapter) GetCustomerOrderHistory(ctx context.Context, customerID int64) ([]integration.CustomerOrderSummary, error) {
	if customerID == 0 {
		return []integration.CustomerOrderSummary{}, nil
	}

	params := url.Values{}
	params.Set("customer_id", formatInt64(customerID))
	params.Set("status", "any")
	params.Set("limit", strconv.Itoa(shopifyPageLimit))
	params.Set("fields", "id,name,created_at,processed_at")

	history := make([]integration.CustomerOrderSummary, 0)
	err := a.paginate(ctx, "orders.json", params, func(body []byte) error {
		var resp ShopifyOrdersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
		}
		for _, o := range resp.Orders {
			history = append(history, integration.CustomerOrderSummary{
				ID:          o.ID,
				Name:        o.Name,
				CreatedAt:   ParseTimestamp(o.CreatedAt),
				ProcessedAt: ParseTimestamp(o.ProcessedAt),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// ---------------------------------------------------------------------------
// Costs
// ---------------------------------------------------------------------------

// GetVariantCost resolves a variant's unit cost through its inventory item.
// Any missing link in the chain yields a nil cost without error.
func (a *ShopifyAdapter) GetVariantCost(ctx context.Context, variantID int64) (*decimal.Decimal, error) {
	body, status, err := a.get(ctx, a.endpoint("variants/"+formatInt64(variantID)+".json", nil))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, status)
	}

	var variant ShopifyVariantResponse
	if err := json.Unmarshal(body, &variant); err != nil || variant.Variant.InventoryItemID == nil {
		return nil, nil
	}

	body, status, err = a.get(ctx, a.endpoint("inventory_items/"+formatInt64(*variant.Variant.InventoryItemID)+".json", nil))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, status)
	}

	var item ShopifyInventoryItemResponse
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, nil
	}
	return optionalDecimal(item.InventoryItem.Cost), nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// ListProducts lists products with the given status ("active", "draft", "archived")
func (a *ShopifyAdapter) ListProducts(ctx context.Context, status string) ([]integration.Product, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	params.Set("limit", strconv.Itoa(shopifyPageLimit))

	products := make([]integration.Product, 0)
	err := a.paginate(ctx, "products.json", params, func(body []byte) error {
		var resp ShopifyProductsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
		}
		for i := range resp.Products {
			products = append(products, resp.Products[i].ToProduct())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductMetafields lists a product's metafields; a missing product has none
func (a *ShopifyAdapter) GetProductMetafields(ctx context.Context, productID int64) ([]integration.Metafield, error) {
	body, status, err := a.get(ctx, a.endpoint("products/"+formatInt64(productID)+"/metafields.json", nil))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []integration.Metafield{}, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, status)
	}

	var resp ShopifyMetafieldsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	fields := make([]integration.Metafield, 0, len(resp.Metafields))
	for i := range resp.Metafields {
		fields = append(fields, resp.Metafields[i].ToMetafield())
	}
	return fields, nil
}

// TestConnection reports whether a minimal authenticated request succeeds
func (a *ShopifyAdapter) TestConnection(ctx context.Context) bool {
	params := url.Values{}
	params.Set("limit", "1")
	_, status, err := a.get(ctx, a.endpoint("orders.json", params))
	if err != nil {
		a.logger.Warn("Storefront connection test failed", zap.Error(err))
		return false
	}
	return status == http.StatusOK
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

func (a *ShopifyAdapter) endpoint(path string, params url.Values) string {
	u := a.config.APIBaseURL + "/" + strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// paginate walks rel="next" links. Query parameters are sent on the first
// page only; the next link carries its own cursor.
func (a *ShopifyAdapter) paginate(ctx context.Context, path string, params url.Values, handle func(body []byte) error) error {
	next := a.endpoint(path, params)
	for next != "" {
		resp, err := a.do(ctx, next)
		if err != nil {
			return err
		}
		if resp.status != http.StatusOK {
			return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.status)
		}
		if err := handle(resp.body); err != nil {
			return err
		}
		next = ParseNextLink(resp.link)
	}
	return nil
}

// get performs a GET and returns the body and status. Only non-2xx statuses
// that survive retries are returned for the caller to interpret.
func (a *ShopifyAdapter) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	resp, err := a.do(ctx, rawURL)
	if err != nil {
		return nil, 0, err
	}
	return resp.body, resp.status, nil
}

// do sends a throttled GET. A 429 waits Retry-After plus padding and retries
// up to MaxRateLimitAttempts in total; 5xx and transport errors back off
// exponentially for MaxServerRetries retries.
func (a *ShopifyAdapter) do(ctx context.Context, rawURL string) (*rawResponse, error) {
	rateLimited := 0
	serverRetries := 0

	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := a.send(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if serverRetries >= a.config.MaxServerRetries {
				return nil, err
			}
			if err := a.backoff(ctx, serverRetries); err != nil {
				return nil, err
			}
			serverRetries++
			continue
		}

		switch {
		case resp.status == http.StatusTooManyRequests:
			rateLimited++
			if rateLimited >= a.config.MaxRateLimitAttempts {
				return nil, fmt.Errorf("%w: after %d attempts", integration.ErrPlatformRateLimited, rateLimited)
			}
			wait := retryAfter(resp.retryAfter) + a.config.RetryAfterPadding
			a.logger.Warn("Storefront rate limited", zap.Duration("wait", wait), zap.Int("attempt", rateLimited))
			if err := a.sleep(ctx, wait); err != nil {
				return nil, err
			}
		case isRetryableStatus(resp.status):
			if serverRetries >= a.config.MaxServerRetries {
				return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformUnavailable, resp.status)
			}
			if err := a.backoff(ctx, serverRetries); err != nil {
				return nil, err
			}
			serverRetries++
		default:
			return resp, nil
		}
	}
}

type rawResponse struct {
	status     int
	body       []byte
	link       string
	retryAfter string
}

func (a *ShopifyAdapter) send(ctx context.Context, rawURL string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	return &rawResponse{
		status:     resp.StatusCode,
		body:       body,
		link:       resp.Header.Get("Link"),
		retryAfter: resp.Header.Get("Retry-After"),
	}, nil
}

func (a *ShopifyAdapter) backoff(ctx context.Context, retry int) error {
	wait := a.config.BackoffBase << retry
	a.logger.Warn("Storefront request failed, retrying", zap.Duration("wait", wait), zap.Int("retry", retry+1))
	return a.sleep(ctx, wait)
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfter parses a Retry-After header in seconds, defaulting to 2s
func retryAfter(header string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || secs < 0 {
		return 2 * time.Second
	}
	return time.Duration(secs * float64(time.Second))
}

// ParseNextLink extracts the rel="next" URL from a Link header, or ""
func ParseNextLink(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		if m := linkURLPattern.FindStringSubmatch(part); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure ShopifyAdapter implements CommercePlatform
var _ integration.CommercePlatform = (*ShopifyAdapter)(nil)

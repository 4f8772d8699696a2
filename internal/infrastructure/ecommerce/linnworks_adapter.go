package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// LinnworksAdapter implements integration.FulfillmentPlatform
type LinnworksAdapter struct {
	config     *LinnworksConfig
	httpClient *http.Client
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex // Protects token and server
	token  string
	server string
}

// LinnworksOption customizes a LinnworksAdapter
type LinnworksOption func(*LinnworksAdapter)

// WithLinnworksLogger sets the adapter logger
func WithLinnworksLogger(logger *zap.Logger) LinnworksOption {
	return func(a *LinnworksAdapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewLinnworksAdapter creates a new Linnworks adapter with the given configuration
func NewLinnworksAdapter(config *LinnworksConfig, opts ...LinnworksOption) (*LinnworksAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &LinnworksAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: zap.NewNop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authenticate exchanges the installation credentials for a session token
func (a *LinnworksAdapter) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("applicationId", a.config.ApplicationID)
	form.Set("applicationSecret", a.config.ApplicationSecret)
	form.Set("token", a.config.InstallToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("linnworks: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := a.send(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, status)
	}

	var auth LinnworksAuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if auth.Token == "" {
		return fmt.Errorf("%w: empty session token", integration.ErrPlatformAuthFailed)
	}

	server := strings.TrimRight(auth.Server, "/")
	if server == "" {
		server = a.config.DefaultServer
	}

	a.mu.Lock()
	a.token = auth.Token
	a.server = server
	a.mu.Unlock()

	a.logger.Debug("Warehouse session established", zap.String("server", server))
	return nil
}

// session returns the current token and server, authenticating on first use
func (a *LinnworksAdapter) session(ctx context.Context) (string, string, error) {
	a.mu.Lock()
	token, server := a.token, a.server
	a.mu.Unlock()
	if token != "" {
		return token, server, nil
	}

	if err := a.Authenticate(ctx); err != nil {
		return "", "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token, a.server, nil
}

// ---------------------------------------------------------------------------
// Processed Orders
// ---------------------------------------------------------------------------

// SearchProcessedOrders pages through every order processed between the two
// days. A failure on the first page is an error. A later failed page ends
// paging and the orders gathered so far are returned.
func (a *LinnworksAdapter) SearchProcessedOrders(ctx context.Context, from, to time.Time) ([]integration.ProcessedOrder, error) {
	orders := make([]integration.ProcessedOrder, 0)

	for page := 1; ; page++ {
		form := url.Values{}
		form.Set("from", from.Format("01-02-2006")+" 00:00:00")
		form.Set("to", to.Format("01-02-2006")+" 23:59:59")
		form.Set("dateType", "PROCESSED")
		form.Set("searchField", "")
		form.Set("exactMatch", "false")
		form.Set("searchTerm", "")
		form.Set("pageNum", strconv.Itoa(page))
		form.Set("numEntriesPerPage", strconv.Itoa(a.config.PageSize))

		body, status, err := a.post(ctx, linnworksSearchPath, "application/x-www-form-urlencoded", []byte(form.Encode()))
		if err == nil && status != http.StatusOK {
			err = fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, status)
		}
		var result LinnworksProcessedPage
		if err == nil {
			if jerr := json.Unmarshal(body, &result); jerr != nil {
				err = fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, jerr)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if page == 1 || errors.Is(err, integration.ErrPlatformAuthFailed) {
				return nil, err
			}
			a.logger.Warn("Processed order page failed, returning partial results",
				zap.Int("page", page),
				zap.Int("fetched", len(orders)),
				zap.Error(err),
			)
			break
		}

		if len(result.Data) == 0 {
			break
		}
		for i := range result.Data {
			orders = append(orders, result.Data[i].ToProcessedOrder())
		}
		a.logger.Debug("Fetched processed order page",
			zap.Int("page", page),
			zap.Int("fetched", len(orders)),
			zap.Int("total", result.TotalEntries),
		)
		if len(orders) >= result.TotalEntries {
			break
		}

		if err := a.sleep(ctx, a.config.PageDelay); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// ---------------------------------------------------------------------------
// Order Details
// ---------------------------------------------------------------------------

// GetOrdersByID fetches order details in batches. A failed batch is logged and
// skipped; a rejected session is an error.
func (a *LinnworksAdapter) GetOrdersByID(ctx context.Context, pkOrderIDs []string) ([]integration.OrderDetail, error) {
	if len(pkOrderIDs) == 0 {
		return []integration.OrderDetail{}, nil
	}

	details := make([]integration.OrderDetail, 0, len(pkOrderIDs))

	for start := 0; start < len(pkOrderIDs); start += linnworksDetailBatchSize {
		end := min(start+linnworksDetailBatchSize, len(pkOrderIDs))

		payload, err := json.Marshal(map[string][]string{"pkOrderIds": pkOrderIDs[start:end]})
		if err != nil {
			return nil, fmt.Errorf("linnworks: failed to encode request: %w", err)
		}

		body, status, err := a.post(ctx, linnworksDetailPath, "application/json", payload)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, integration.ErrPlatformAuthFailed) {
				return nil, err
			}
			a.logger.Warn("Order detail batch failed", zap.Int("batch_start", start), zap.Error(err))
			continue
		}
		if status != http.StatusOK {
			a.logger.Warn("Order detail batch failed", zap.Int("batch_start", start), zap.Int("status", status))
			continue
		}

		var records []LinnworksOrderDetail
		if err := json.Unmarshal(body, &records); err != nil {
			a.logger.Warn("Order detail batch unreadable", zap.Int("batch_start", start), zap.Error(err))
			continue
		}
		for i := range records {
			details = append(details, records[i].ToOrderDetail())
		}
	}

	return details, nil
}

// post sends an authorized request to the session server. When the session
// is rejected it is renewed once and the request retried.
func (a *LinnworksAdapter) post(ctx context.Context, path, contentType string, payload []byte) ([]byte, int, error) {
	for attempt := 0; ; attempt++ {
		token, server, err := a.session(ctx)
		if err != nil {
			return nil, 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, server+path, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, fmt.Errorf("linnworks: failed to create request: %w", err)
		}
		req.Header.Set("Authorization", token)
		req.Header.Set("Content-Type", contentType)

		body, status, err := a.send(req)
		if err != nil {
			return nil, 0, err
		}
		if status != http.StatusUnauthorized && status != http.StatusForbidden {
			return body, status, nil
		}

		a.invalidate(token)
		if attempt > 0 {
			return nil, status, fmt.Errorf("%w: session rejected with HTTP %d", integration.ErrPlatformAuthFailed, status)
		}
		a.logger.Info("Warehouse session rejected, re-authenticating", zap.Int("status", status))
	}
}

// invalidate forgets the session if it is still the rejected one
func (a *LinnworksAdapter) invalidate(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == token {
		a.token = ""
	}
}

// send executes a request and returns the size-limited body and status
func (a *LinnworksAdapter) send(req *http.Request) ([]byte, int, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("linnworks: failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// Ensure LinnworksAdapter implements FulfillmentPlatform
var _ integration.FulfillmentPlatform = (*LinnworksAdapter)(nil)

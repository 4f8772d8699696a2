// Package billing adapts the subscription billing app behind
// integration.SubscriptionPlatform.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the Appstle API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// appstleContract is a subscription-contract-details record
type appstleContract struct {
	ID          int64   `json:"id"`
	Status      string  `json:"status"`
	CreatedAt   *string `json:"createdAt"`
	CancelledOn *string `json:"cancelledOn"`
}

// AppstleAdapter implements integration.SubscriptionPlatform for Appstle
type AppstleAdapter struct {
	config     *AppstleConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAppstleAdapter creates a new Appstle adapter
func NewAppstleAdapter(config *AppstleConfig, logger *zap.Logger) (*AppstleAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AppstleAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// ListSubscriptions returns one zero-based page of contracts with the given status
func (a *AppstleAdapter) ListSubscriptions(ctx context.Context, status integration.SubscriptionStatus, page, size int) ([]integration.Subscription, error) {
	params := url.Values{}
	params.Set("status", string(status))
	params.Set("size", strconv.Itoa(size))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+appstleContractsPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("appstle: failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", a.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("appstle: failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
	}

	var contracts []appstleContract
	if err := json.Unmarshal(body, &contracts); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
	}

	a.logger.Debug("Fetched subscription page",
		zap.String("status", string(status)),
		zap.Int("page", page),
		zap.Int("count", len(contracts)),
	)

	subs := make([]integration.Subscription, 0, len(contracts))
	for _, c := range contracts {
		subs = append(subs, integration.Subscription{
			ID:          c.ID,
			Status:      c.Status,
			CreatedAt:   parseContractTime(c.CreatedAt),
			CancelledOn: parseContractTime(c.CancelledOn),
		})
	}
	return subs, nil
}

// parseContractTime reads an ISO 8601 instant. Zone-less values are UTC.
func parseContractTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// Ensure AppstleAdapter implements SubscriptionPlatform
var _ integration.SubscriptionPlatform = (*AppstleAdapter)(nil)

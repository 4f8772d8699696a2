package sheets

import (
	"context"
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

// maxExportSize bounds a downloaded CSV export (10MB)
const maxExportSize = 10 * 1024 * 1024

// GoPuffSheetConfig locates the published Go Puff sales spreadsheet
type GoPuffSheetConfig struct {
	SheetID        string
	SummaryGID     string
	RawSalesGID    string
	BaseURL        string
	TimeoutSeconds int
}

const (
	goPuffDefaultSheetID     = "12-xrEgll_No_7J_P1xqZHa-HAtyRRwmQ5Hp6uWCM6ng"
	goPuffDefaultSummaryGID  = "432589449"
	goPuffDefaultRawSalesGID = "565428930"
	sheetsDefaultBaseURL     = "https://docs.google.com/spreadsheets/d"
	sheetsDefaultTimeout     = 30
)

// DefaultGoPuffSheetConfig returns the production sheet location
func DefaultGoPuffSheetConfig() *GoPuffSheetConfig {
	return &GoPuffSheetConfig{
		SheetID:        goPuffDefaultSheetID,
		SummaryGID:     goPuffDefaultSummaryGID,
		RawSalesGID:    goPuffDefaultRawSalesGID,
		BaseURL:        sheetsDefaultBaseURL,
		TimeoutSeconds: sheetsDefaultTimeout,
	}
}

// Validate checks the sheet id and fills in defaults
func (c *GoPuffSheetConfig) Validate() error {
	if strings.TrimSpace(c.SheetID) == "" {
		return ErrSheetConfigMissingID
	}
	if c.SummaryGID == "" {
		c.SummaryGID = goPuffDefaultSummaryGID
	}
	if c.RawSalesGID == "" {
		c.RawSalesGID = goPuffDefaultRawSalesGID
	}
	if c.BaseURL == "" {
		c.BaseURL = sheetsDefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = sheetsDefaultTimeout
	}
	return nil
}

// GoPuffSheetSource implements integration.SalesSheetSource over the CSV export
type GoPuffSheetSource struct {
	config     *GoPuffSheetConfig
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewGoPuffSheetSource creates a sheet source
func NewGoPuffSheetSource(config *GoPuffSheetConfig, logger *zap.Logger) (*GoPuffSheetSource, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoPuffSheetSource{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}, nil
}

// FetchSummary returns the dashboard summary tab
func (s *GoPuffSheetSource) FetchSummary(ctx context.Context) (*integration.SheetTable, error) {
	return s.fetch(ctx, s.config.SummaryGID)
}

// FetchRawSales returns the per-product daily sales tab
func (s *GoPuffSheetSource) FetchRawSales(ctx context.Context) (*integration.SheetTable, error) {
	return s.fetch(ctx, s.config.RawSalesGID)
}

// ExportURL builds the CSV export URL of a tab. The trailing timestamp defeats
// intermediate caches.
func (s *GoPuffSheetSource) ExportURL(gid string) string {
	params := url.Values{}
	params.Set("format", "csv")
	params.Set("gid", gid)
	params.Set("_", strconv.FormatInt(s.now().Unix(), 10))
	return fmt.Sprintf("%s/%s/export?%s", s.config.BaseURL, url.PathEscape(s.config.SheetID), params.Encode())
}

func (s *GoPuffSheetSource) fetch(ctx context.Context, gid string) (*integration.SheetTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ExportURL(gid), nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to read export: %w", err)
	}

	table, err := ParseTableBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}

	s.logger.Debug("Fetched sheet tab", zap.String("gid", gid), zap.Int("rows", len(table.Rows)))
	return table, nil
}

// Ensure GoPuffSheetSource implements SalesSheetSource
var _ integration.SalesSheetSource = (*GoPuffSheetSource)(nil)

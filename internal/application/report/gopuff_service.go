package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/gopuff"
	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

// GoPuffService reports retail sales volume from the published Go Puff sheet.
// The sheet is read fresh on every request.
type GoPuffService struct {
	source integration.SalesSheetSource
	opts   serviceOptions
}

// NewGoPuffService creates the Go Puff sales service
func NewGoPuffService(source integration.SalesSheetSource, opts ...Option) *GoPuffService {
	return &GoPuffService{source: source, opts: applyOptions(0, opts)}
}

// Dashboard returns the summary tab highlights and the raw sales breakdown
// for the week weekOffset weeks before the current one
func (s *GoPuffService) Dashboard(ctx context.Context, weekOffset int) (*GoPuffResponse, error) {
	if weekOffset > 0 {
		return nil, report.ErrInvalidWeekOffset
	}

	ctx, span := telemetry.StartSpan(ctx, "gopuff", "dashboard", "week_offset", weekOffset)
	defer span.End()

	started := time.Now()
	summaryTab, err := s.source.FetchSummary(ctx)
	observeUpstream(ctx, s.opts.metrics, platformSheets, "fetch_summary", started, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch sales summary: %w", err)
	}

	started = time.Now()
	rawTab, err := s.source.FetchRawSales(ctx)
	observeUpstream(ctx, s.opts.metrics, platformSheets, "fetch_raw_sales", started, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch raw sales: %w", err)
	}

	raw := gopuff.ParseRawSales(rawTab)
	weekly, err := raw.WeeklySales(s.opts.now(), weekOffset)
	if err != nil {
		return nil, err
	}

	resp := &GoPuffResponse{
		Summary:    gopuff.ParseSummary(summaryTab),
		Today:      raw.TodayStats(),
		TodaySales: raw.TodaySales(),
		Weekly:     weekly,
	}
	if latest, _, ok := raw.LatestDate(); ok {
		resp.LatestDate = latest.Format(dateLayout)
	}
	if top, ok := raw.MonthlyTop(); ok {
		resp.MonthlyTop = &top
	}

	logger.L(ctx).Debug("Built Go Puff dashboard",
		zap.Int("products", len(raw.Products)),
		zap.Int("dates", len(raw.Dates)),
		zap.Int("week_offset", weekOffset),
	)
	return resp, nil
}

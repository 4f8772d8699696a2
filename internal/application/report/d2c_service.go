// Package report assembles the dashboards served over HTTP and printed by the
// command line tools. Services fetch from the upstream ports, cache raw
// upstream snapshots briefly and run the domain pipeline over them.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/infrastructure/cache"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

// defaultOrdersTTL is how long upstream order snapshots are reused
const defaultOrdersTTL = 5 * time.Minute

const noOrdersNotice = "No dispatched D2C orders found for the selected window"

// D2CService builds the direct-to-consumer dashboard from warehouse dispatches
// joined with storefront orders
type D2CService struct {
	commerce    integration.CommercePlatform
	fulfillment integration.FulfillmentPlatform
	processor   *report.OrderProcessor
	snapshots   *cache.SnapshotCache
	opts        serviceOptions
}

// NewD2CService creates the D2C dashboard service
func NewD2CService(
	commerce integration.CommercePlatform,
	fulfillment integration.FulfillmentPlatform,
	costs report.LineCostCalculator,
	snapshots *cache.SnapshotCache,
	opts ...Option,
) *D2CService {
	o := applyOptions(defaultOrdersTTL, opts)
	if snapshots == nil {
		snapshots = cache.NewSnapshotCache(o.ttl)
	}
	return &D2CService{
		commerce:    commerce,
		fulfillment: fulfillment,
		processor:   report.NewOrderProcessor(costs, report.WithClock(o.now)),
		snapshots:   snapshots,
		opts:        o,
	}
}

// FetchD2COrdersForPeriod runs the pipeline for orders dispatched in the window:
// warehouse dispatches, D2C filter, dispatch index, storefront orders by id,
// then per-order metrics.
func (s *D2CService) FetchD2COrdersForPeriod(ctx context.Context, w report.Window) (*PeriodOrders, error) {
	ctx, span := telemetry.StartSpan(ctx, "d2c", "fetch_period",
		telemetry.SpanAttrWindowFrom, w.Start.Format(dateLayout),
		telemetry.SpanAttrWindowTo, w.End.Format(dateLayout))
	defer span.End()

	processed, err := s.processedOrders(ctx, w)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	d2c := report.FilterD2C(processed)
	result := &PeriodOrders{
		Window:       w,
		LinnworksD2C: len(d2c),
		Orders:       make([]report.OrderMetrics, 0),
	}
	if len(d2c) == 0 {
		return result, nil
	}

	index := report.BuildDispatchIndex(d2c)
	ids := report.ShopifyOrderIDs(d2c)
	orders, err := s.commerceOrders(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.Orders, result.Total, result.Skipped = s.processor.ProcessOrders(ctx, orders, index, nil)

	missing := 0
	for _, o := range result.Orders {
		missing += o.MissingCostCount
	}
	s.opts.metrics.RecordOrders(ctx, channelD2C, len(result.Orders), result.Skipped)
	s.opts.metrics.RecordMissingCosts(ctx, missing)
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderCount, len(result.Orders))

	logger.L(ctx).Info("Processed D2C orders",
		zap.String("window", w.Key()),
		zap.Int("linnworks_d2c", result.LinnworksD2C),
		zap.Int("storefront_orders", result.Total),
		zap.Int("processed", len(result.Orders)),
		zap.Int("skipped", result.Skipped),
		zap.Int("missing_costs", missing),
	)
	return result, nil
}

// processedOrders returns warehouse dispatches for the window, cached per window
func (s *D2CService) processedOrders(ctx context.Context, w report.Window) ([]integration.ProcessedOrder, error) {
	return cache.Load(ctx, s.snapshots, keyProcessedOrders+w.Key(), s.opts.ttl,
		func(ctx context.Context) ([]integration.ProcessedOrder, error) {
			started := time.Now()
			orders, err := s.fulfillment.SearchProcessedOrders(ctx, w.Start, w.End)
			observeUpstream(ctx, s.opts.metrics, platformLinnworks, "search_processed_orders", started, err)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch processed orders: %w", err)
			}
			return orders, nil
		})
}

// commerceOrders returns storefront orders for the ids, cached per id set
func (s *D2CService) commerceOrders(ctx context.Context, ids []int64) ([]integration.CommerceOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return cache.Load(ctx, s.snapshots, keyCommerceOrders+idSetKey(ids), s.opts.ttl,
		func(ctx context.Context) ([]integration.CommerceOrder, error) {
			started := time.Now()
			orders, err := s.commerce.GetOrdersByIDs(ctx, ids)
			observeUpstream(ctx, s.opts.metrics, platformShopify, "get_orders_by_ids", started, err)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch storefront orders: %w", err)
			}
			return orders, nil
		})
}

// idSetKey hashes a sorted id list into a short cache key
func idSetKey(ids []int64) string {
	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(strconv.FormatInt(id, 10)))
		h.Write([]byte{','})
	}
	return strconv.Itoa(len(ids)) + ":" + hex.EncodeToString(h.Sum(nil)[:12])
}

// GetDashboard builds the period comparison and the selected-window breakdown
func (s *D2CService) GetDashboard(ctx context.Context, q DashboardQuery) (*D2CDashboardResponse, error) {
	w, err := report.NewWindow(q.Start, q.End)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	periods := report.NewPeriodWindows(now)

	ctx, span := telemetry.StartSpan(ctx, "d2c", "dashboard",
		telemetry.SpanAttrWindowFrom, w.Start.Format(dateLayout),
		telemetry.SpanAttrWindowTo, w.End.Format(dateLayout))
	defer span.End()

	history, err := s.FetchD2COrdersForPeriod(ctx, periods.Span())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	selected, err := s.FetchD2COrdersForPeriod(ctx, w)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	p := D2CPeriods{
		MTD:       report.D2CPeriodMetrics(report.OrdersInWindow(history.Orders, periods.MTD)),
		YTD:       report.D2CPeriodMetrics(report.OrdersInWindow(history.Orders, periods.YTD)),
		LastMonth: report.D2CPeriodMetrics(report.OrdersInWindow(history.Orders, periods.LastMonth)),
		LFL:       report.D2CPeriodMetrics(report.OrdersInWindow(history.Orders, periods.LFL)),
		YTDLFL:    report.D2CPeriodMetrics(report.OrdersInWindow(history.Orders, periods.YTDLFL)),
	}
	s.opts.metrics.RecordPeriodRevenue(ctx, "mtd", p.MTD.Revenue.InexactFloat64())
	s.opts.metrics.RecordPeriodRevenue(ctx, "ytd", p.YTD.Revenue.InexactFloat64())

	filtered := report.FilterByWeekday(selected.Orders, q.DayFilter())

	resp := &D2CDashboardResponse{
		Window:  toWindowResponse(w),
		Labels:  periodLabels(periods),
		Periods: p,
		Variances: Variances{
			RevenueVsLastMonth: report.Variance(p.MTD.Revenue, p.LastMonth.Revenue),
			ProfitVsLastMonth:  report.Variance(p.MTD.Profit, p.LastMonth.Profit),
			RevenueVsLFL:       report.Variance(p.MTD.Revenue, p.LFL.Revenue),
			ProfitVsLFL:        report.Variance(p.MTD.Profit, p.LFL.Profit),
			YTDRevenueVsLFL:    report.Variance(p.YTD.Revenue, p.YTDLFL.Revenue),
			YTDProfitVsLFL:     report.Variance(p.YTD.Profit, p.YTDLFL.Profit),
		},
		MarginDeltas: MarginDeltas{
			VsLastMonth: report.MarginDelta(p.MTD.MarginPct, p.LastMonth.MarginPct),
			VsLFL:       report.MarginDelta(p.MTD.MarginPct, p.LFL.MarginPct),
			YTDVsLFL:    report.MarginDelta(p.YTD.MarginPct, p.YTDLFL.MarginPct),
		},
		OrderDeltas: OrderDeltas{
			VsLastMonth: report.OrderDelta(p.MTD.Orders, p.LastMonth.Orders),
			VsLFL:       report.OrderDelta(p.MTD.Orders, p.LFL.Orders),
			YTDVsLFL:    report.OrderDelta(p.YTD.Orders, p.YTDLFL.Orders),
		},
		Stats: SelectionStats{
			LinnworksD2C: selected.LinnworksD2C,
			Processed:    len(selected.Orders),
			Total:        selected.Total,
			Skipped:      selected.Skipped,
			Filtered:     len(filtered),
		},
		KPIs:        report.CalculateKPIs(filtered),
		Weekly:      report.WeeklyKPIs(filtered),
		WeeklyPivot: report.WeeklySummary(filtered).Pivot(),
		Orders:      report.OrderRows(filtered),
		Packaging:   PackagingAssumptions(),
		GeneratedAt: now,
	}
	if selected.LinnworksD2C == 0 {
		resp.Notice = noOrdersNotice
	}
	return resp, nil
}

// ListOrders returns the order rows of the selected window
func (s *D2CService) ListOrders(ctx context.Context, q DashboardQuery) (*OrdersResponse, error) {
	w, orders, err := s.selectedOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	rows := report.OrderRows(orders)
	return &OrdersResponse{Window: toWindowResponse(w), Count: len(rows), Orders: rows}, nil
}

// Weekly returns weekly KPIs and the weekday summary of the selected window
func (s *D2CService) Weekly(ctx context.Context, q DashboardQuery) (*WeeklyResponse, error) {
	w, orders, err := s.selectedOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	summary := report.WeeklySummary(orders)
	return &WeeklyResponse{
		Window:  toWindowResponse(w),
		Weekly:  report.WeeklyKPIs(orders),
		Summary: summary.Rows,
		Pivot:   summary.Pivot(),
	}, nil
}

func (s *D2CService) selectedOrders(ctx context.Context, q DashboardQuery) (report.Window, []report.OrderMetrics, error) {
	w, err := report.NewWindow(q.Start, q.End)
	if err != nil {
		return report.Window{}, nil, err
	}
	result, err := s.FetchD2COrdersForPeriod(ctx, w)
	if err != nil {
		return report.Window{}, nil, err
	}
	return w, report.FilterByWeekday(result.Orders, q.DayFilter()), nil
}

// InvalidateSnapshots drops cached upstream orders
func (s *D2CService) InvalidateSnapshots() {
	s.snapshots.Flush()
}

package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/domain/retail"
	"github.com/homecooks/profitability/internal/infrastructure/cache"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/telemetry"
)

const (
	defaultRetailTTL = 10 * time.Minute

	// historyDays is the all-time horizon of the retail history
	historyDays = 730
)

// excludedStoreNames are shown alongside the cost assumptions
var excludedStoreNames = []string{"Go Puff", "GoPuff", "On The Rocks"}

// ManualOrder is a wholesale order booked outside the warehouse. A zero Date
// dates it today.
type ManualOrder struct {
	retail.ManualOrder
	Date time.Time
}

// RetailService builds the wholesale dashboard from "no shipping" warehouse orders
type RetailService struct {
	fulfillment integration.FulfillmentPlatform
	costModel   retail.CostModel
	manual      []ManualOrder
	snapshots   *cache.SnapshotCache
	opts        serviceOptions
}

// NewRetailService creates the retail dashboard service. A nil manual list
// books the default chilled Go Puff order.
func NewRetailService(
	fulfillment integration.FulfillmentPlatform,
	costModel retail.CostModel,
	manual []ManualOrder,
	snapshots *cache.SnapshotCache,
	opts ...Option,
) *RetailService {
	o := applyOptions(defaultRetailTTL, opts)
	if snapshots == nil {
		snapshots = cache.NewSnapshotCache(o.ttl)
	}
	if manual == nil {
		for _, m := range retail.DefaultManualOrders() {
			manual = append(manual, ManualOrder{ManualOrder: m})
		}
	}
	for i := range manual {
		if manual[i].Reference == "" {
			manual[i].Reference = "MANUAL-" + strings.ToUpper(uuid.NewString()[:8])
		}
	}
	return &RetailService{
		fulfillment: fulfillment,
		costModel:   costModel,
		manual:      manual,
		snapshots:   snapshots,
		opts:        o,
	}
}

// FetchRetailOrders returns wholesale orders processed in the window, manual
// orders excluded
func (s *RetailService) FetchRetailOrders(ctx context.Context, w report.Window) ([]retail.Order, error) {
	return cache.Load(ctx, s.snapshots, keyRetailOrders+w.Key(), s.opts.ttl,
		func(ctx context.Context) ([]retail.Order, error) {
			ctx, span := telemetry.StartSpan(ctx, "retail", "fetch_orders",
				telemetry.SpanAttrWindowFrom, w.Start.Format(dateLayout),
				telemetry.SpanAttrWindowTo, w.End.Format(dateLayout))
			defer span.End()

			started := time.Now()
			processed, err := s.fulfillment.SearchProcessedOrders(ctx, w.Start, w.End)
			observeUpstream(ctx, s.opts.metrics, platformLinnworks, "search_processed_orders", started, err)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, fmt.Errorf("failed to fetch processed orders: %w", err)
			}

			wholesale := report.FilterRetail(processed)
			if len(wholesale) == 0 {
				return []retail.Order{}, nil
			}
			ids := make([]string, 0, len(wholesale))
			for _, o := range wholesale {
				if o.PkOrderID != "" {
					ids = append(ids, o.PkOrderID)
				}
			}

			started = time.Now()
			details, err := s.fulfillment.GetOrdersByID(ctx, ids)
			observeUpstream(ctx, s.opts.metrics, platformLinnworks, "get_orders_by_id", started, err)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, fmt.Errorf("failed to fetch retail order details: %w", err)
			}

			orders := retail.FromDetails(details)
			s.opts.metrics.RecordOrders(ctx, channelRetail, len(orders), len(wholesale)-len(orders))
			logger.L(ctx).Info("Fetched retail orders",
				zap.String("window", w.Key()),
				zap.Int("wholesale", len(wholesale)),
				zap.Int("details", len(orders)),
			)
			return orders, nil
		})
}

// manualOrders dates the configured manual orders and keeps those inside w
func (s *RetailService) manualOrders(today time.Time, w report.Window) []retail.Order {
	out := make([]retail.Order, 0, len(s.manual))
	for _, m := range s.manual {
		date := m.Date
		if date.IsZero() {
			date = today
		}
		if w.Contains(date) {
			out = append(out, m.ToOrder(date))
		}
	}
	return out
}

// history returns the all-time order set, manual orders included. The
// horizon reaches back at least to the start of last year.
func (s *RetailService) history(ctx context.Context, periods report.PeriodWindows) (report.Window, []retail.Order, error) {
	start := periods.Today.AddDate(0, 0, -historyDays)
	if periods.YTDLFL.Start.Before(start) {
		start = periods.YTDLFL.Start
	}
	w := report.Window{Start: start, End: periods.Today}

	orders, err := s.FetchRetailOrders(ctx, w)
	if err != nil {
		return report.Window{}, nil, err
	}
	all := make([]retail.Order, 0, len(orders)+len(s.manual))
	all = append(all, orders...)
	all = append(all, s.manualOrders(periods.Today, w)...)
	return w, all, nil
}

// GetDashboard builds period revenue, profitability and store summaries
func (s *RetailService) GetDashboard(ctx context.Context, q RetailQuery) (*RetailDashboardResponse, error) {
	w, err := report.NewWindow(q.Start, q.End)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	periods := report.NewPeriodWindows(now)

	span, all, err := s.history(ctx, periods)
	if err != nil {
		return nil, err
	}

	var selected []retail.Order
	if !w.Start.Before(span.Start) && !w.End.After(span.End) {
		selected = retail.OrdersInWindow(all, w)
	} else {
		fetched, err := s.FetchRetailOrders(ctx, w)
		if err != nil {
			return nil, err
		}
		selected = make([]retail.Order, 0, len(fetched)+len(s.manual))
		selected = append(selected, fetched...)
		selected = append(selected, s.manualOrders(periods.Today, w)...)
	}

	in := func(pw report.Window) []retail.Order { return retail.OrdersInWindow(all, pw) }
	revenue := RetailPeriods{
		MTD:       retail.SumRevenue(in(periods.MTD)),
		YTD:       retail.SumRevenue(in(periods.YTD)),
		LastMonth: retail.SumRevenue(in(periods.LastMonth)),
		LFL:       retail.SumRevenue(in(periods.LFL)),
		YTDLFL:    retail.SumRevenue(in(periods.YTDLFL)),
	}
	profit := RetailProfitPeriods{
		MTD:       s.costModel.PeriodProfitability(in(periods.MTD)),
		YTD:       s.costModel.PeriodProfitability(in(periods.YTD)),
		LastMonth: s.costModel.PeriodProfitability(in(periods.LastMonth)),
		LFL:       s.costModel.PeriodProfitability(in(periods.LFL)),
		YTDLFL:    s.costModel.PeriodProfitability(in(periods.YTDLFL)),
	}

	stores := retail.StoreSummary(all)
	return &RetailDashboardResponse{
		Window:        toWindowResponse(w),
		Labels:        periodLabels(periods),
		Periods:       revenue,
		Profitability: profit,
		Variances: Variances{
			RevenueVsLastMonth: report.Variance(revenue.MTD.Revenue, revenue.LastMonth.Revenue),
			ProfitVsLastMonth:  report.Variance(profit.MTD.Profit, profit.LastMonth.Profit),
			RevenueVsLFL:       report.Variance(revenue.MTD.Revenue, revenue.LFL.Revenue),
			ProfitVsLFL:        report.Variance(profit.MTD.Profit, profit.LFL.Profit),
			YTDRevenueVsLFL:    report.Variance(revenue.YTD.Revenue, revenue.YTDLFL.Revenue),
			YTDProfitVsLFL:     report.Variance(profit.YTD.Profit, profit.YTDLFL.Profit),
		},
		OrderDeltas: OrderDeltas{
			VsLastMonth: report.OrderDelta(revenue.MTD.Orders, revenue.LastMonth.Orders),
			VsLFL:       report.OrderDelta(revenue.MTD.Orders, revenue.LFL.Orders),
			YTDVsLFL:    report.OrderDelta(revenue.YTD.Orders, revenue.YTDLFL.Orders),
		},
		Selected: RetailSelection{
			Revenue:       retail.SumRevenue(selected),
			Profitability: s.costModel.PeriodProfitability(selected),
			Monthly:       retail.MonthlySummary(selected),
			Orders:        selected,
		},
		Stores:             stores,
		StoreProfitability: s.costModel.StoreProfitability(all),
		UniqueStores:       len(stores),
		AllTimeOrders:      len(all),
		GeneratedAt:        now,
	}, nil
}

// Stores returns the all-time store summary
func (s *RetailService) Stores(ctx context.Context) (*StoresResponse, error) {
	periods := report.NewPeriodWindows(s.opts.now())
	_, all, err := s.history(ctx, periods)
	if err != nil {
		return nil, err
	}

	stores := retail.StoreSummary(all)
	duplicates := 0
	for _, st := range stores {
		if st.PossibleDuplicate {
			duplicates++
		}
	}
	return &StoresResponse{
		Stores:        stores,
		UniqueStores:  len(stores),
		AllTimeOrders: len(all),
		Duplicates:    duplicates,
	}, nil
}

// CostAssumptions returns the wholesale cost model and delivery table
func (s *RetailService) CostAssumptions() RetailCostAssumptions {
	extra := retail.DeliveryCost(61).Sub(retail.DeliveryCost(60))
	return RetailCostAssumptions{
		CostModel:       s.costModel,
		Delivery:        retail.DeliveryTable(),
		ExtraCaseCharge: extra,
		ExcludedStores:  excludedStoreNames,
	}
}

// InvalidateSnapshots drops cached retail orders
func (s *RetailService) InvalidateSnapshots() {
	s.snapshots.Flush()
}

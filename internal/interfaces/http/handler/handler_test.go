package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/infrastructure/scheduler"
	"github.com/homecooks/profitability/internal/interfaces/http/dto"
	"github.com/homecooks/profitability/internal/interfaces/http/middleware"
	"github.com/homecooks/profitability/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func fixedNow() time.Time {
	return time.Date(2025, 9, 17, 10, 0, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// envelope decodes the response envelope, keeping data raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func serveRoutes(t *testing.T, group *router.DomainGroup, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeD2C struct {
	last reportapp.DashboardQuery
	err  error
}

func (f *fakeD2C) GetDashboard(ctx context.Context, q reportapp.DashboardQuery) (*reportapp.D2CDashboardResponse, error) {
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	return &reportapp.D2CDashboardResponse{Notice: "ok", Stats: reportapp.SelectionStats{Processed: 3}}, nil
}

func (f *fakeD2C) ListOrders(ctx context.Context, q reportapp.DashboardQuery) (*reportapp.OrdersResponse, error) {
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	return &reportapp.OrdersResponse{
		Window: reportapp.WindowResponse{Start: "2025-09-03", End: "2025-09-17"},
		Count:  2,
		Orders: []report.OrderRow{
			{OrderName: "#1001", OrderID: 1001, Currency: "GBP"},
			{OrderName: "#1002", OrderID: 1002, Currency: "GBP"},
		},
	}, nil
}

func (f *fakeD2C) Weekly(ctx context.Context, q reportapp.DashboardQuery) (*reportapp.WeeklyResponse, error) {
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	return &reportapp.WeeklyResponse{}, nil
}

type fakeRetail struct {
	last reportapp.RetailQuery
	err  error
}

func (f *fakeRetail) GetDashboard(ctx context.Context, q reportapp.RetailQuery) (*reportapp.RetailDashboardResponse, error) {
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	return &reportapp.RetailDashboardResponse{UniqueStores: 4}, nil
}

func (f *fakeRetail) Stores(ctx context.Context) (*reportapp.StoresResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &reportapp.StoresResponse{UniqueStores: 4, AllTimeOrders: 9}, nil
}

func (f *fakeRetail) CostAssumptions() reportapp.RetailCostAssumptions {
	return reportapp.RetailCostAssumptions{ExcludedStores: []string{"On The Rocks"}}
}

type fakeGoPuff struct {
	offset int
	err    error
}

func (f *fakeGoPuff) Dashboard(ctx context.Context, weekOffset int) (*reportapp.GoPuffResponse, error) {
	f.offset = weekOffset
	if f.err != nil {
		return nil, f.err
	}
	return &reportapp.GoPuffResponse{LatestDate: "2025-09-16"}, nil
}

type fakeSubscriptions struct {
	available bool
	resp      *reportapp.SubscriptionResponse
	err       error
}

func (f *fakeSubscriptions) Available() bool { return f.available }

func (f *fakeSubscriptions) Metrics(ctx context.Context) (*reportapp.SubscriptionResponse, error) {
	return f.resp, f.err
}

type fakeRefresher struct {
	mu      sync.Mutex
	running bool
	last    scheduler.RunResult
	calls   int
	done    chan struct{}
	err     error
}

func (f *fakeRefresher) RunNow(ctx context.Context) (scheduler.RunResult, error) {
	f.mu.Lock()
	f.calls++
	f.last = scheduler.RunResult{RunID: "run-2", Attempts: 1}
	done := f.done
	f.mu.Unlock()
	if done != nil {
		close(done)
	}
	return f.last, f.err
}

func (f *fakeRefresher) LastResult() scheduler.RunResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeRefresher) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeRefresher) Schedule() string { return "08:00" }

type fakeConnection bool

func (f fakeConnection) TestConnection(ctx context.Context) bool { return bool(f) }

package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/interfaces/http/dto"
)

func newTestRetailHandler(svc *fakeRetail) *RetailHandler {
	h := NewRetailHandler(svc)
	h.clock = fixedNow
	return h
}

func TestRetailHandler_GetDashboard(t *testing.T) {
	svc := &fakeRetail{}
	w, env := serveRoutes(t, newTestRetailHandler(svc).Routes(), http.MethodGet, "/api/v1/retail/dashboard?start_date=2025-09-10")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reportapp.RetailQuery{Start: day(2025, 9, 10), End: day(2025, 9, 17)}, svc.last)
	assert.Equal(t, 4, decodeData[reportapp.RetailDashboardResponse](t, env).UniqueStores)
}

func TestRetailHandler_GetDashboard_BadDate(t *testing.T) {
	svc := &fakeRetail{}
	w, env := serveRoutes(t, newTestRetailHandler(svc).Routes(), http.MethodGet, "/api/v1/retail/dashboard?end_date=yesterday")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
}

func TestRetailHandler_Stores(t *testing.T) {
	w, env := serveRoutes(t, newTestRetailHandler(&fakeRetail{}).Routes(), http.MethodGet, "/api/v1/retail/stores")

	require.Equal(t, http.StatusOK, w.Code)
	stores := decodeData[reportapp.StoresResponse](t, env)
	assert.Equal(t, 4, stores.UniqueStores)
	assert.Equal(t, 9, stores.AllTimeOrders)
}

func TestRetailHandler_StoresUpstreamError(t *testing.T) {
	svc := &fakeRetail{err: integration.ErrPlatformRequestFailed}
	w, env := serveRoutes(t, newTestRetailHandler(svc).Routes(), http.MethodGet, "/api/v1/retail/stores")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, dto.ErrCodeUpstream, env.Error.Code)
}

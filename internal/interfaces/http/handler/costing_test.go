package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/interfaces/http/dto"
)

func TestCostingHandler_GetPackaging(t *testing.T) {
	w, env := serveRoutes(t, NewCostingHandler(&fakeRetail{}).Routes(), http.MethodGet, "/api/v1/costing/packaging")

	require.Equal(t, http.StatusOK, w.Code)
	boxes := decodeData[[]reportapp.PackagingAssumption](t, env)
	assert.Len(t, boxes, len(reportapp.PackagingAssumptions()))
}

func TestCostingHandler_GetRetail(t *testing.T) {
	w, env := serveRoutes(t, NewCostingHandler(&fakeRetail{}).Routes(), http.MethodGet, "/api/v1/costing/retail")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "On The Rocks")
}

func TestCostingHandler_GetRetail_NotWired(t *testing.T) {
	w, env := serveRoutes(t, NewCostingHandler(nil).Routes(), http.MethodGet, "/api/v1/costing/retail")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeNotConfigured, env.Error.Code)
}

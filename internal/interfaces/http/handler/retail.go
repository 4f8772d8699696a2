package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	reportapp "github.com/homecooks/profitability/internal/application/report"
)

// RetailDashboards builds the wholesale views
type RetailDashboards interface {
	GetDashboard(ctx context.Context, q reportapp.RetailQuery) (*reportapp.RetailDashboardResponse, error)
	Stores(ctx context.Context) (*reportapp.StoresResponse, error)
	CostAssumptions() reportapp.RetailCostAssumptions
}

var _ RetailDashboards = (*reportapp.RetailService)(nil)

// RetailHandler serves /retail
type RetailHandler struct {
	BaseHandler
	service RetailDashboards
	clock   clock
}

// NewRetailHandler creates a new RetailHandler
func NewRetailHandler(service RetailDashboards) *RetailHandler {
	return &RetailHandler{service: service}
}

// GetDashboard returns revenue, profitability and store tables of the window
func (h *RetailHandler) GetDashboard(c *gin.Context) {
	var req WindowRequest
	if !bindQuery(c, &h.BaseHandler, &req) {
		return
	}
	resp, err := h.service.GetDashboard(c.Request.Context(), req.toRetailQuery(h.clock.now()))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Stores returns the all-time store summary
func (h *RetailHandler) Stores(c *gin.Context) {
	resp, err := h.service.Stores(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

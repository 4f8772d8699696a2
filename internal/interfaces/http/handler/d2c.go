package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	reportapp "github.com/homecooks/profitability/internal/application/report"
)

// D2CDashboards builds the direct-to-consumer views
type D2CDashboards interface {
	GetDashboard(ctx context.Context, q reportapp.DashboardQuery) (*reportapp.D2CDashboardResponse, error)
	ListOrders(ctx context.Context, q reportapp.DashboardQuery) (*reportapp.OrdersResponse, error)
	Weekly(ctx context.Context, q reportapp.DashboardQuery) (*reportapp.WeeklyResponse, error)
}

var _ D2CDashboards = (*reportapp.D2CService)(nil)

// D2CHandler serves /d2c
type D2CHandler struct {
	BaseHandler
	service D2CDashboards
	clock   clock
}

// NewD2CHandler creates a new D2CHandler
func NewD2CHandler(service D2CDashboards) *D2CHandler {
	return &D2CHandler{service: service}
}

func (h *D2CHandler) query(c *gin.Context) (reportapp.DashboardQuery, bool) {
	var req D2CQueryRequest
	if !bindQuery(c, &h.BaseHandler, &req) {
		return reportapp.DashboardQuery{}, false
	}
	return req.toQuery(h.clock.now()), true
}

// GetDashboard returns KPIs, period comparisons and order rows of the window
func (h *D2CHandler) GetDashboard(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	resp, err := h.service.GetDashboard(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOrders returns the order rows of the window, as CSV with format=csv
func (h *D2CHandler) ListOrders(c *gin.Context) {
	var req OrdersQueryRequest
	if !bindQuery(c, &h.BaseHandler, &req) {
		return
	}
	resp, err := h.service.ListOrders(c.Request.Context(), req.toQuery(h.clock.now()))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.Format != "csv" {
		h.Success(c, resp)
		return
	}

	data, err := reportapp.RenderOrdersCSV(resp.Orders)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportapp.OrdersCSVName(resp.Window)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Weekly returns weekly KPIs and the weekday pivot
func (h *D2CHandler) Weekly(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	resp, err := h.service.Weekly(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	reportapp "github.com/homecooks/profitability/internal/application/report"
)

// GoPuffDashboards reads the Go Puff sales sheet
type GoPuffDashboards interface {
	Dashboard(ctx context.Context, weekOffset int) (*reportapp.GoPuffResponse, error)
}

var _ GoPuffDashboards = (*reportapp.GoPuffService)(nil)

// GoPuffHandler serves /gopuff
type GoPuffHandler struct {
	BaseHandler
	service GoPuffDashboards
}

// NewGoPuffHandler creates a new GoPuffHandler
func NewGoPuffHandler(service GoPuffDashboards) *GoPuffHandler {
	return &GoPuffHandler{service: service}
}

// GetDashboard returns the sheet summary plus daily, monthly and weekly sales.
// week_offset 0 is the current week, -1 the one before.
func (h *GoPuffHandler) GetDashboard(c *gin.Context) {
	var req GoPuffQueryRequest
	if !bindQuery(c, &h.BaseHandler, &req) {
		return
	}
	resp, err := h.service.Dashboard(c.Request.Context(), req.WeekOffset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

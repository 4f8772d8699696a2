package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/homecooks/profitability/internal/application/report"
)

// CostingHandler serves /costing, the fixed cost assumptions behind the
// dashboards
type CostingHandler struct {
	BaseHandler
	retail RetailDashboards
}

// NewCostingHandler creates a new CostingHandler
func NewCostingHandler(retail RetailDashboards) *CostingHandler {
	return &CostingHandler{retail: retail}
}

// GetPackaging returns packaging cost per shipping band
func (h *CostingHandler) GetPackaging(c *gin.Context) {
	h.Success(c, reportapp.PackagingAssumptions())
}

// GetRetail returns the wholesale cost model and delivery table
func (h *CostingHandler) GetRetail(c *gin.Context) {
	if h.retail == nil {
		h.HandleError(c, errNotConfigured)
		return
	}
	h.Success(c, h.retail.CostAssumptions())
}

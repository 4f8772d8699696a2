package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/domain/integration"
)

// SubscriptionMetrics reads subscriber movement
type SubscriptionMetrics interface {
	Available() bool
	Metrics(ctx context.Context) (*reportapp.SubscriptionResponse, error)
}

var _ SubscriptionMetrics = (*reportapp.SubscriptionService)(nil)

// SubscriptionHandler serves /subscriptions
type SubscriptionHandler struct {
	BaseHandler
	service SubscriptionMetrics
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(service SubscriptionMetrics) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// GetMetrics returns active, new and cancelled subscribers. Without an
// Appstle key the answer is {"available": false} rather than an error, so
// the dashboard can hide the widget. The response is a cached snapshot, so
// is_new_high stays true until the snapshot expires.
func (h *SubscriptionHandler) GetMetrics(c *gin.Context) {
	if h.service == nil || !h.service.Available() {
		h.Success(c, reportapp.SubscriptionResponse{Available: false})
		return
	}
	resp, err := h.service.Metrics(c.Request.Context())
	if errors.Is(err, integration.ErrPlatformNotConfigured) {
		h.Success(c, reportapp.SubscriptionResponse{Available: false})
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

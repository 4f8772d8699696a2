package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/scheduler"
	"github.com/homecooks/profitability/internal/interfaces/http/dto"
)

// Refresher runs the dashboard refresh on demand
type Refresher interface {
	RunNow(ctx context.Context) (scheduler.RunResult, error)
	LastResult() scheduler.RunResult
	Running() bool
	Schedule() string
}

var _ Refresher = (*scheduler.DailyRefresh)(nil)

// ConnectionTester checks the storefront credentials
type ConnectionTester interface {
	TestConnection(ctx context.Context) bool
}

// SystemHandler serves /system
type SystemHandler struct {
	BaseHandler
	refresher  Refresher
	connection ConnectionTester
	version    string
	startTime  time.Time
	log        *zap.Logger
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithRefresher enables the manual refresh endpoint
func WithRefresher(r Refresher) SystemOption {
	return func(h *SystemHandler) {
		h.refresher = r
	}
}

// WithVersion sets the version reported by /system/info
func WithVersion(v string) SystemOption {
	return func(h *SystemHandler) {
		h.version = v
	}
}

// WithSystemLogger sets the logger of background refreshes
func WithSystemLogger(l *zap.Logger) SystemOption {
	return func(h *SystemHandler) {
		h.log = l
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(connection ConnectionTester, opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		connection: connection,
		version:    "dev",
		startTime:  time.Now(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// RefreshStatusResponse describes the scheduled refresh
type RefreshStatusResponse struct {
	Enabled  bool                 `json:"enabled"`
	Schedule string               `json:"schedule,omitempty"`
	Running  bool                 `json:"running"`
	LastRun  *scheduler.RunResult `json:"last_run,omitempty"`
}

// ConnectionResponse is the storefront connection check
type ConnectionResponse struct {
	Connected bool `json:"connected"`
}

// GetSystemInfo returns version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "HomeCooks profitability API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// GetRefreshStatus returns the schedule and the most recent refresh
func (h *SystemHandler) GetRefreshStatus(c *gin.Context) {
	h.Success(c, h.refreshStatus())
}

func (h *SystemHandler) refreshStatus() RefreshStatusResponse {
	if h.refresher == nil {
		return RefreshStatusResponse{}
	}
	resp := RefreshStatusResponse{
		Enabled:  true,
		Schedule: h.refresher.Schedule(),
		Running:  h.refresher.Running(),
	}
	if last := h.refresher.LastResult(); last.RunID != "" {
		resp.LastRun = &last
	}
	return resp
}

// TriggerRefresh starts a refresh in the background and answers 202.
// The run outlives the request.
func (h *SystemHandler) TriggerRefresh(c *gin.Context) {
	if h.refresher == nil {
		h.ErrorWithCode(c, dto.ErrCodeRefreshDisabled, "Scheduled refresh is disabled")
		return
	}
	if h.refresher.Running() {
		h.HandleError(c, scheduler.ErrRefreshInProgress)
		return
	}

	ctx := logger.WithContext(context.WithoutCancel(c.Request.Context()), h.log)
	go func() {
		if _, err := h.refresher.RunNow(ctx); err != nil {
			h.log.Warn("Manual refresh did not complete", zap.Error(err))
		}
	}()

	status := h.refreshStatus()
	status.Running = true
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(status))
}

// TestConnection checks the storefront credentials
func (h *SystemHandler) TestConnection(c *gin.Context) {
	if h.connection == nil {
		h.HandleError(c, errNotConfigured)
		return
	}
	h.Success(c, ConnectionResponse{Connected: h.connection.TestConnection(c.Request.Context())})
}

// Ping answers liveness probes
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{"message": "pong", "timestamp": time.Now().Format(time.RFC3339)})
}

// Package handler holds the gin handlers of the dashboard API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/shared"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/scheduler"
	"github.com/homecooks/profitability/internal/interfaces/http/dto"
	"github.com/homecooks/profitability/internal/interfaces/http/middleware"
)

// errNotConfigured marks an endpoint whose backing service was not wired
var errNotConfigured = integration.ErrPlatformNotConfigured

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps service errors onto the response envelope:
//
//	validation failures         400 VALIDATION_ERROR
//	domain errors               status of their code
//	platform not configured     503 NOT_CONFIGURED
//	upstream rejected our keys  502 UPSTREAM_AUTH_FAILED
//	other upstream failures     502 UPSTREAM_ERROR
//	overlapping refresh         409 REFRESH_IN_PROGRESS
//	anything else               500 INTERNAL_ERROR
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		middleware.HandleValidationError(c, err)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		h.Error(c, status, code, domainErr.Message)
		return
	}

	switch {
	case errors.Is(err, integration.ErrPlatformNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodeNotConfigured, "Integration is not configured")
	case errors.Is(err, integration.ErrPlatformAuthFailed):
		h.logUpstream(c, err)
		h.ErrorWithCode(c, dto.ErrCodeUpstreamAuth, "Upstream platform rejected the configured credentials")
	case isUpstreamError(err):
		h.logUpstream(c, err)
		h.ErrorWithCode(c, dto.ErrCodeUpstream, "Upstream platform request failed")
	case errors.Is(err, scheduler.ErrRefreshInProgress):
		h.ErrorWithCode(c, dto.ErrCodeRefreshInProgress, "A refresh is already running")
	default:
		logger.GetGinLogger(c).Error("Unhandled request error", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}

func isUpstreamError(err error) bool {
	return errors.Is(err, integration.ErrPlatformUnavailable) ||
		errors.Is(err, integration.ErrPlatformRequestFailed) ||
		errors.Is(err, integration.ErrPlatformInvalidResponse) ||
		errors.Is(err, integration.ErrPlatformRateLimited) ||
		errors.Is(err, integration.ErrOrderNotFound)
}

func (h *BaseHandler) logUpstream(c *gin.Context, err error) {
	logger.GetGinLogger(c).Warn("Upstream request failed", zap.Error(err))
}

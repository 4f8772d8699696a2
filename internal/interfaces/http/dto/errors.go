package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal = "INTERNAL_ERROR"
	ErrCodeNotFound = "NOT_FOUND"
)

// Request error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// Upstream error codes
const (
	// ErrCodeUpstream is used when Shopify, Linnworks, Appstle or the sales
	// sheet failed or could not be reached
	ErrCodeUpstream = "UPSTREAM_ERROR"
	// ErrCodeUpstreamAuth is used when an upstream rejected our credentials
	ErrCodeUpstreamAuth = "UPSTREAM_AUTH_FAILED"
	// ErrCodeNotConfigured is used when an optional integration has no credentials
	ErrCodeNotConfigured = "NOT_CONFIGURED"
)

// Refresh error codes
const (
	ErrCodeRefreshInProgress = "REFRESH_IN_PROGRESS"
	ErrCodeRefreshDisabled   = "REFRESH_DISABLED"
)

// Domain error codes raised by report validation
const (
	ErrCodeInvalidDateRange  = "INVALID_DATE_RANGE"
	ErrCodeInvalidWeekOffset = "INVALID_WEEK_OFFSET"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeUpstream:      http.StatusBadGateway,
	ErrCodeUpstreamAuth:  http.StatusBadGateway,
	ErrCodeNotConfigured: http.StatusServiceUnavailable,

	ErrCodeRefreshInProgress: http.StatusConflict,
	ErrCodeRefreshDisabled:   http.StatusServiceUnavailable,

	ErrCodeInvalidDateRange:  http.StatusBadRequest,
	ErrCodeInvalidWeekOffset: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the shared domain error codes onto API codes
var LegacyErrorCodeMapping = map[string]string{
	"INVALID_INPUT": ErrCodeInvalidInput,
	"INVALID_STATE": ErrCodeBadRequest,
}

// NormalizeErrorCode converts a shared domain code to its API code.
// Codes already in API form pass through unchanged.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

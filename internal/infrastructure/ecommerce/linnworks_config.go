package ecommerce

import (
	"errors"
	"time"
)

// LinnworksConfig holds configuration for the Linnworks warehouse API
type LinnworksConfig struct {
	// ApplicationID, ApplicationSecret and InstallToken identify the app installation
	ApplicationID     string
	ApplicationSecret string
	InstallToken      string

	// AuthURL is the application authorization endpoint
	AuthURL string
	// DefaultServer is used when the auth response names no server
	DefaultServer string

	// PageSize is the processed order page size
	PageSize int
	// PageDelay is the pause between processed order pages
	PageDelay time.Duration
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	linnworksDefaultAuthURL   = "https://api.linnworks.net/api/Auth/AuthorizeByApplication"
	linnworksDefaultServer    = "https://eu-ext.linnworks.net"
	linnworksDefaultPageSize  = 500
	linnworksDefaultPageDelay = 200 * time.Millisecond
	linnworksDefaultTimeout   = 30

	// linnworksDetailBatchSize bounds the order ids sent per GetOrdersById call
	linnworksDetailBatchSize = 50

	linnworksSearchPath = "/api/ProcessedOrders/SearchProcessedOrdersPaged"
	linnworksDetailPath = "/api/Orders/GetOrdersById"
)

// Errors for Linnworks configuration
var (
	ErrLinnworksConfigMissingAppID        = errors.New("linnworks: application id is required")
	ErrLinnworksConfigMissingAppSecret    = errors.New("linnworks: application secret is required")
	ErrLinnworksConfigMissingInstallToken = errors.New("linnworks: install token is required")
)

// NewLinnworksConfig creates a Linnworks configuration with defaults
func NewLinnworksConfig(appID, appSecret, installToken string) *LinnworksConfig {
	return &LinnworksConfig{
		ApplicationID:     appID,
		ApplicationSecret: appSecret,
		InstallToken:      installToken,
		AuthURL:           linnworksDefaultAuthURL,
		DefaultServer:     linnworksDefaultServer,
		PageSize:          linnworksDefaultPageSize,
		PageDelay:         linnworksDefaultPageDelay,
		TimeoutSeconds:    linnworksDefaultTimeout,
	}
}

// Validate checks required fields and fills in defaults
func (c *LinnworksConfig) Validate() error {
	if c.ApplicationID == "" {
		return ErrLinnworksConfigMissingAppID
	}
	if c.ApplicationSecret == "" {
		return ErrLinnworksConfigMissingAppSecret
	}
	if c.InstallToken == "" {
		return ErrLinnworksConfigMissingInstallToken
	}
	if c.AuthURL == "" {
		c.AuthURL = linnworksDefaultAuthURL
	}
	if c.DefaultServer == "" {
		c.DefaultServer = linnworksDefaultServer
	}
	if c.PageSize <= 0 {
		c.PageSize = linnworksDefaultPageSize
	}
	if c.PageDelay < 0 {
		c.PageDelay = linnworksDefaultPageDelay
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = linnworksDefaultTimeout
	}
	return nil
}

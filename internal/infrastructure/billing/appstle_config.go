package billing

import (
	"errors"
	"strings"
)

// AppstleConfig holds configuration for the Appstle subscriptions API
type AppstleConfig struct {
	// APIKey is sent as X-API-Key
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// BaseURL is the Appstle admin host
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

const (
	appstleDefaultBaseURL = "https://subscription-admin.appstle.com"
	appstleDefaultTimeout = 30
	appstleContractsPath  = "/api/external/v2/subscription-contract-details"
)

// ErrAppstleConfigMissingAPIKey is returned when no API key is configured
var ErrAppstleConfigMissingAPIKey = errors.New("appstle: api key is required")

// DefaultAppstleConfig returns a configuration with defaults and no key
func DefaultAppstleConfig() *AppstleConfig {
	return &AppstleConfig{
		BaseURL:        appstleDefaultBaseURL,
		TimeoutSeconds: appstleDefaultTimeout,
	}
}

// Validate checks the API key and fills in defaults
func (c *AppstleConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrAppstleConfigMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = appstleDefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = appstleDefaultTimeout
	}
	return nil
}

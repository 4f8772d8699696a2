package billing

import (
	"strings"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/infrastructure/config"
)

// NewSubscriptionPlatform returns the Appstle adapter, or nil when no API key
// is configured
func NewSubscriptionPlatform(c config.AppstleConfig, logger *zap.Logger) (integration.SubscriptionPlatform, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, nil
	}
	ac := DefaultAppstleConfig()
	ac.APIKey = c.APIKey
	if c.BaseURL != "" {
		ac.BaseURL = c.BaseURL
	}
	if c.TimeoutSeconds > 0 {
		ac.TimeoutSeconds = c.TimeoutSeconds
	}
	adapter, err := NewAppstleAdapter(ac, logger)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

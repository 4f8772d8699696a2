package ecommerce

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ShopifyConfig holds configuration for the Shopify Admin REST API
type ShopifyConfig struct {
	// StoreDomain is the myshopify domain, with or without scheme
	StoreDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the dated Admin API version
	APIVersion string
	// APIBaseURL overrides the URL derived from domain and version
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int

	// RequestsPerSecond and Burst throttle outgoing requests
	RequestsPerSecond float64
	Burst             int

	// MaxRateLimitAttempts bounds requests answered with 429
	MaxRateLimitAttempts int
	// MaxServerRetries bounds retries of 5xx responses and transport errors
	MaxServerRetries int
	// BackoffBase is the first 5xx retry delay, doubled on each retry
	BackoffBase time.Duration
	// RetryAfterPadding is added to the server's Retry-After delay
	RetryAfterPadding time.Duration
}

const (
	// ShopifyDefaultAPIVersion is the Admin API version used when none is configured
	ShopifyDefaultAPIVersion = "2024-07"

	shopifyDefaultTimeout           = 30
	shopifyDefaultRequestsPerSecond = 2
	shopifyDefaultBurst             = 4
	shopifyDefaultRateLimitAttempts = 5
	shopifyDefaultServerRetries     = 3
	shopifyDefaultBackoffBase       = time.Second
	shopifyDefaultRetryAfterPadding = 500 * time.Millisecond
)

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingDomain = errors.New("shopify: store domain is required")
	ErrShopifyConfigMissingToken  = errors.New("shopify: access token is required")
)

// NewShopifyConfig creates a Shopify configuration with defaults
func NewShopifyConfig(storeDomain, accessToken, apiVersion string) *ShopifyConfig {
	if apiVersion == "" {
		apiVersion = ShopifyDefaultAPIVersion
	}
	return &ShopifyConfig{
		StoreDomain:          storeDomain,
		AccessToken:          accessToken,
		APIVersion:           apiVersion,
		TimeoutSeconds:       shopifyDefaultTimeout,
		RequestsPerSecond:    shopifyDefaultRequestsPerSecond,
		Burst:                shopifyDefaultBurst,
		MaxRateLimitAttempts: shopifyDefaultRateLimitAttempts,
		MaxServerRetries:     shopifyDefaultServerRetries,
		BackoffBase:          shopifyDefaultBackoffBase,
		RetryAfterPadding:    shopifyDefaultRetryAfterPadding,
	}
}

// Validate checks required fields and fills in defaults
func (c *ShopifyConfig) Validate() error {
	c.StoreDomain = NormalizeStoreDomain(c.StoreDomain)
	if c.StoreDomain == "" {
		return ErrShopifyConfigMissingDomain
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = fmt.Sprintf("https://%s/admin/api/%s", c.StoreDomain, c.APIVersion)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = shopifyDefaultTimeout
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = shopifyDefaultRequestsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = shopifyDefaultBurst
	}
	if c.MaxRateLimitAttempts <= 0 {
		c.MaxRateLimitAttempts = shopifyDefaultRateLimitAttempts
	}
	if c.MaxServerRetries <= 0 {
		c.MaxServerRetries = shopifyDefaultServerRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = shopifyDefaultBackoffBase
	}
	if c.RetryAfterPadding < 0 {
		c.RetryAfterPadding = shopifyDefaultRetryAfterPadding
	}
	return nil
}

// NormalizeStoreDomain strips the scheme and trailing slashes from a store domain
func NormalizeStoreDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}

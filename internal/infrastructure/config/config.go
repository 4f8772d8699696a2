package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Shopify   ShopifyConfig
	Linnworks LinnworksConfig
	Appstle   AppstleConfig
	GoPuff    GoPuffConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Refresh   RefreshConfig
	Telemetry TelemetryConfig
	Export    ExportConfig
	Retail    RetailConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// ShopifyConfig holds storefront API settings
type ShopifyConfig struct {
	StoreDomain       string
	AccessToken       string
	APIVersion        string
	TimeoutSeconds    int
	RequestsPerSecond float64
	Burst             int
}

// LinnworksConfig holds warehouse API settings
type LinnworksConfig struct {
	AppID        string
	AppSecret    string
	InstallToken string
	AuthURL      string
	PageSize     int
	PageDelay    time.Duration
}

// Configured reports whether all Linnworks credentials are present
func (c LinnworksConfig) Configured() bool {
	return c.AppID != "" && c.AppSecret != "" && c.InstallToken != ""
}

// AppstleConfig holds subscription API settings
type AppstleConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// GoPuffConfig locates the published Go Puff spreadsheet
type GoPuffConfig struct {
	SheetID     string
	SummaryGID  string
	RawSalesGID string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds cache lifetimes
type CacheConfig struct {
	CostTTL         time.Duration
	OrdersTTL       time.Duration
	RetailTTL       time.Duration
	SubscriptionTTL time.Duration
}

// RefreshConfig holds the daily refresh schedule
type RefreshConfig struct {
	Enabled       bool
	At            string // HH:MM, server local time
	CheckInterval time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces and metrics
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
}

// ExportConfig holds S3-compatible storage settings for CSV exports
type ExportConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// RetailConfig holds retail dashboard inputs
type RetailConfig struct {
	ManualOrders []ManualOrderConfig `mapstructure:"manual_orders"`
	CostModel    RetailCostConfig    `mapstructure:"cost_model"`
}

// ManualOrderConfig is a retail order that never passed through the warehouse
type ManualOrderConfig struct {
	Store     string  `mapstructure:"store"`
	Reference string  `mapstructure:"reference"`
	Date      string  `mapstructure:"date"` // YYYY-MM-DD, empty means today
	Qty       int     `mapstructure:"qty"`
	Total     float64 `mapstructure:"total"`
	SKUs      string  `mapstructure:"skus"`
}

// RetailCostConfig holds the wholesale cost assumptions
type RetailCostConfig struct {
	FreightPerUnit  float64 `mapstructure:"freight_per_unit"`
	FreightPerCase  float64 `mapstructure:"freight_per_case"`
	CasePicking     float64 `mapstructure:"case_picking"`
	OrderProcessing float64 `mapstructure:"order_processing"`
	OrderTracking   float64 `mapstructure:"order_tracking"`
	CaseLabelling   float64 `mapstructure:"case_labelling"`
	CommissionRate  float64 `mapstructure:"commission_rate"`
	SKUCase         float64 `mapstructure:"sku_case"`
	SleeveX6        float64 `mapstructure:"sleeve_x6"`
	CaseProduction  float64 `mapstructure:"case_production"`
}

// Configuration errors
var (
	ErrShopifyNotConfigured = errors.New("config: shopify.store_domain and shopify.access_token are required")
	ErrInvalidSamplingRatio = errors.New("config: telemetry.sampling_ratio must be between 0.0 and 1.0")
	ErrInvalidRefreshTime   = errors.New("config: refresh.at must be HH:MM")
	ErrExportBucketMissing  = errors.New("config: export.bucket is required when export is enabled")
	ErrWildcardCORS         = errors.New("config: http.cors_allow_origins cannot be '*' in production")
)

// rawEnvBindings are unprefixed environment names honoured alongside HC_*
var rawEnvBindings = map[string]string{
	"shopify.store_domain":    "SHOPIFY_STORE_DOMAIN",
	"shopify.access_token":    "SHOPIFY_ACCESS_TOKEN",
	"shopify.api_version":     "SHOPIFY_API_VERSION",
	"linnworks.app_id":        "LINNWORKS_APP_ID",
	"linnworks.app_secret":    "LINNWORKS_APP_SECRET",
	"linnworks.install_token": "LINNWORKS_INSTALL_TOKEN",
	"appstle.api_key":         "APPSTLE_API_KEY",
}

// Load loads configuration from a .env file, config.toml and environment variables
// Priority (highest to lowest):
// 1. Environment variables with HC_ prefix (e.g., HC_SHOPIFY_ACCESS_TOKEN)
// 2. Raw platform variables (e.g., SHOPIFY_ACCESS_TOKEN)
// 3. config.toml
// 4. Built-in defaults
//
// Variables from .env never override variables already set in the process.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/profitability")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("HC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, raw := range rawEnvBindings {
		prefixed := "HC_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, raw); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", raw, err)
		}
	}
	setCostModelDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Shopify: ShopifyConfig{
			StoreDomain:       v.GetString("shopify.store_domain"),
			AccessToken:       v.GetString("shopify.access_token"),
			APIVersion:        v.GetString("shopify.api_version"),
			TimeoutSeconds:    v.GetInt("shopify.timeout_seconds"),
			RequestsPerSecond: v.GetFloat64("shopify.requests_per_second"),
			Burst:             v.GetInt("shopify.burst"),
		},
		Linnworks: LinnworksConfig{
			AppID:        v.GetString("linnworks.app_id"),
			AppSecret:    v.GetString("linnworks.app_secret"),
			InstallToken: v.GetString("linnworks.install_token"),
			AuthURL:      v.GetString("linnworks.auth_url"),
			PageSize:     v.GetInt("linnworks.page_size"),
			PageDelay:    v.GetDuration("linnworks.page_delay"),
		},
		Appstle: AppstleConfig{
			APIKey:         v.GetString("appstle.api_key"),
			BaseURL:        v.GetString("appstle.base_url"),
			TimeoutSeconds: v.GetInt("appstle.timeout_seconds"),
		},
		GoPuff: GoPuffConfig{
			SheetID:     v.GetString("gopuff.sheet_id"),
			SummaryGID:  v.GetString("gopuff.summary_gid"),
			RawSalesGID: v.GetString("gopuff.raw_gid"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			CostTTL:         v.GetDuration("cache.cost_ttl"),
			OrdersTTL:       v.GetDuration("cache.orders_ttl"),
			RetailTTL:       v.GetDuration("cache.retail_ttl"),
			SubscriptionTTL: v.GetDuration("cache.subscription_ttl"),
		},
		Refresh: RefreshConfig{
			Enabled:       v.GetBool("refresh.enabled"),
			At:            v.GetString("refresh.at"),
			CheckInterval: v.GetDuration("refresh.check_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
		Export: ExportConfig{
			Enabled:         v.GetBool("export.enabled"),
			Bucket:          v.GetString("export.bucket"),
			Region:          v.GetString("export.region"),
			Endpoint:        v.GetString("export.endpoint"),
			Prefix:          v.GetString("export.prefix"),
			AccessKeyID:     v.GetString("export.access_key_id"),
			SecretAccessKey: v.GetString("export.secret_access_key"),
			UsePathStyle:    v.GetBool("export.use_path_style"),
		},
	}

	if err := v.UnmarshalKey("retail", &cfg.Retail); err != nil {
		return nil, fmt.Errorf("error reading retail config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setCostModelDefaults(v *viper.Viper) {
	v.SetDefault("retail.cost_model.freight_per_unit", 0.14)
	v.SetDefault("retail.cost_model.freight_per_case", 0.66)
	v.SetDefault("retail.cost_model.case_picking", 0.14)
	v.SetDefault("retail.cost_model.order_processing", 1.09)
	v.SetDefault("retail.cost_model.order_tracking", 0.27)
	v.SetDefault("retail.cost_model.case_labelling", 0.0)
	v.SetDefault("retail.cost_model.commission_rate", 0.10)
	v.SetDefault("retail.cost_model.sku_case", 0.10)
	v.SetDefault("retail.cost_model.sleeve_x6", 0.67)
	v.SetDefault("retail.cost_model.case_production", 15.48)
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "profitability"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// a cold dashboard load walks every upstream page
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-07"
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Shopify.RequestsPerSecond == 0 {
		cfg.Shopify.RequestsPerSecond = 2
	}
	if cfg.Shopify.Burst == 0 {
		cfg.Shopify.Burst = 4
	}
	if cfg.Linnworks.AuthURL == "" {
		cfg.Linnworks.AuthURL = "https://api.linnworks.net/api/Auth/AuthorizeByApplication"
	}
	if cfg.Linnworks.PageSize == 0 {
		cfg.Linnworks.PageSize = 500
	}
	if cfg.Linnworks.PageDelay == 0 {
		cfg.Linnworks.PageDelay = 200 * time.Millisecond
	}
	if cfg.Appstle.BaseURL == "" {
		cfg.Appstle.BaseURL = "https://subscription-admin.appstle.com"
	}
	if cfg.Appstle.TimeoutSeconds == 0 {
		cfg.Appstle.TimeoutSeconds = 30
	}
	if cfg.GoPuff.SheetID == "" {
		cfg.GoPuff.SheetID = "12-xrEgll_No_7J_P1xqZHa-HAtyRRwmQ5Hp6uWCM6ng"
	}
	if cfg.GoPuff.SummaryGID == "" {
		cfg.GoPuff.SummaryGID = "432589449"
	}
	if cfg.GoPuff.RawSalesGID == "" {
		cfg.GoPuff.RawSalesGID = "565428930"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.CostTTL == 0 {
		cfg.Cache.CostTTL = time.Hour
	}
	if cfg.Cache.OrdersTTL == 0 {
		cfg.Cache.OrdersTTL = 5 * time.Minute
	}
	if cfg.Cache.RetailTTL == 0 {
		cfg.Cache.RetailTTL = 10 * time.Minute
	}
	if cfg.Cache.SubscriptionTTL == 0 {
		cfg.Cache.SubscriptionTTL = 5 * time.Minute
	}
	if cfg.Refresh.At == "" {
		cfg.Refresh.At = "08:00"
	}
	if cfg.Refresh.CheckInterval == 0 {
		cfg.Refresh.CheckInterval = time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Export.Region == "" {
		cfg.Export.Region = "eu-west-2"
	}
	if cfg.Export.Prefix == "" {
		cfg.Export.Prefix = "exports/"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("%w, got %f", ErrInvalidSamplingRatio, c.Telemetry.SamplingRatio)
	}
	if _, err := time.Parse("15:04", c.Refresh.At); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRefreshTime, c.Refresh.At)
	}
	if c.Export.Enabled && c.Export.Bucket == "" {
		return ErrExportBucketMissing
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return ErrWildcardCORS
			}
		}
	}

	return nil
}

// RequireShopify returns ErrShopifyNotConfigured unless the storefront
// domain and token are set. The server and the CLIs cannot run without them.
func (c *Config) RequireShopify() error {
	if strings.TrimSpace(c.Shopify.StoreDomain) == "" || strings.TrimSpace(c.Shopify.AccessToken) == "" {
		return ErrShopifyNotConfigured
	}
	return nil
}

// RedisAddr returns host:port
func (r RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/tableside/backend/internal/domain/billing"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Remote   RemoteConfig
	Attempt  AttemptConfig
	Watcher  WatcherConfig
	Pricing  PricingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds the embedded SQLite settings
type DatabaseConfig struct {
	Path string // file path, or ":memory:" for tests
}

// RedisConfig holds Redis connection settings for the attempt store
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSAllowOrigins []string
}

// RemoteConfig holds the optional remote order backend settings.
// An empty BaseURL means the venue runs local-only.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AttemptConfig holds submission attempt deduplication settings
type AttemptConfig struct {
	Backend string // memory or redis
	TTL     time.Duration
	Enabled bool
}

// WatcherConfig holds order status polling settings
type WatcherConfig struct {
	Enabled      bool
	PollInterval time.Duration
}

// PricingConfig is the merchant pricing configuration as it appears in the
// config file. An absent block decodes with Enabled=false, which the engine
// treats as that stage being disabled.
type PricingConfig struct {
	Tax           TaxConfig
	ServiceCharge ServiceChargeConfig
	Tip           TipConfig
}

// TaxConfig mirrors billing.TaxConfig at the config boundary
type TaxConfig struct {
	Enabled     bool
	Percentage  float64
	DisplayMode string // exclusive, inclusive
}

// ServiceChargeConfig mirrors billing.ServiceChargeConfig at the config boundary
type ServiceChargeConfig struct {
	Enabled    bool
	Percentage float64
	Base       string // pre_tax, post_tax
}

// TipConfig mirrors billing.TipConfig at the config boundary
type TipConfig struct {
	Enabled     bool
	Presets     []float64
	AllowCustom bool
	Base        string // pre_tax, post_tax
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with TABLESIDE_ prefix (e.g., TABLESIDE_REDIS_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file is fine, defaults and env vars apply
	}

	v.SetEnvPrefix("TABLESIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Remote: RemoteConfig{
			BaseURL: v.GetString("remote.base_url"),
			Timeout: v.GetDuration("remote.timeout"),
		},
		Attempt: AttemptConfig{
			Backend: v.GetString("attempt.backend"),
			TTL:     v.GetDuration("attempt.ttl"),
			Enabled: v.GetBool("attempt.enabled"),
		},
		Watcher: WatcherConfig{
			Enabled:      v.GetBool("watcher.enabled"),
			PollInterval: v.GetDuration("watcher.poll_interval"),
		},
		Pricing: PricingConfig{
			Tax: TaxConfig{
				Enabled:     v.GetBool("pricing.tax.enabled"),
				Percentage:  v.GetFloat64("pricing.tax.percentage"),
				DisplayMode: v.GetString("pricing.tax.display_mode"),
			},
			ServiceCharge: ServiceChargeConfig{
				Enabled:    v.GetBool("pricing.service_charge.enabled"),
				Percentage: v.GetFloat64("pricing.service_charge.percentage"),
				Base:       v.GetString("pricing.service_charge.base"),
			},
			Tip: TipConfig{
				Enabled:     v.GetBool("pricing.tip.enabled"),
				Presets:     floatSlice(v.Get("pricing.tip.presets")),
				AllowCustom: v.GetBool("pricing.tip.allow_custom"),
				Base:        v.GetString("pricing.tip.base"),
			},
		},
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tableside-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "tableside.db"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
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
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 10 * time.Second
	}
	if cfg.Attempt.Backend == "" {
		cfg.Attempt.Backend = "memory"
	}
	if cfg.Attempt.TTL == 0 {
		cfg.Attempt.TTL = 24 * time.Hour
	}
	if cfg.Watcher.PollInterval == 0 {
		cfg.Watcher.PollInterval = 15 * time.Second
	}
	if cfg.Pricing.Tax.DisplayMode == "" {
		cfg.Pricing.Tax.DisplayMode = "exclusive"
	}
	if cfg.Pricing.ServiceCharge.Base == "" {
		cfg.Pricing.ServiceCharge.Base = "pre_tax"
	}
	if cfg.Pricing.Tip.Base == "" {
		cfg.Pricing.Tip.Base = "pre_tax"
	}
}

func (c *Config) validate() error {
	if c.Attempt.Backend != "memory" && c.Attempt.Backend != "redis" {
		return fmt.Errorf("invalid attempt backend %q: must be memory or redis", c.Attempt.Backend)
	}
	switch c.Pricing.Tax.DisplayMode {
	case "exclusive", "inclusive":
	default:
		return fmt.Errorf("invalid tax display mode %q", c.Pricing.Tax.DisplayMode)
	}
	for name, base := range map[string]string{
		"service_charge": c.Pricing.ServiceCharge.Base,
		"tip":            c.Pricing.Tip.Base,
	} {
		if base != "pre_tax" && base != "post_tax" {
			return fmt.Errorf("invalid %s base %q: must be pre_tax or post_tax", name, base)
		}
	}
	if c.Pricing.Tax.Percentage < 0 || c.Pricing.ServiceCharge.Percentage < 0 {
		return fmt.Errorf("pricing percentages must not be negative")
	}
	return nil
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// RedisAddr returns the host:port address for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// ToPricing converts the config-boundary pricing blocks to the domain type
func (c *Config) ToPricing() billing.PricingConfig {
	presets := make([]decimal.Decimal, len(c.Pricing.Tip.Presets))
	for i, p := range c.Pricing.Tip.Presets {
		presets[i] = decimal.NewFromFloat(p)
	}
	return billing.PricingConfig{
		Tax: billing.TaxConfig{
			Enabled:     c.Pricing.Tax.Enabled,
			Percentage:  decimal.NewFromFloat(c.Pricing.Tax.Percentage),
			DisplayMode: billing.TaxDisplayMode(c.Pricing.Tax.DisplayMode),
		},
		ServiceCharge: billing.ServiceChargeConfig{
			Enabled:    c.Pricing.ServiceCharge.Enabled,
			Percentage: decimal.NewFromFloat(c.Pricing.ServiceCharge.Percentage),
			Base:       billing.ChargeBase(c.Pricing.ServiceCharge.Base),
		},
		Tip: billing.TipConfig{
			Enabled:     c.Pricing.Tip.Enabled,
			Presets:     presets,
			AllowCustom: c.Pricing.Tip.AllowCustom,
			Base:        billing.ChargeBase(c.Pricing.Tip.Base),
		},
	}
}

func floatSlice(raw any) []float64 {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			out = append(out, n)
		case int64:
			out = append(out, float64(n))
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}

// Package config provides configuration loading for the FormVista API.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"` // dev, staging, prod
	APIVersion   string        `mapstructure:"api_version"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// IsProduction reports whether the server runs in the prod environment.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the PostgreSQL URL used by the migration driver.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds per-kind TTLs for the read-through cache.
type CacheConfig struct {
	FormTTL           time.Duration `mapstructure:"form_ttl"`
	BlocksTTL         time.Duration `mapstructure:"blocks_ttl"`
	UserFormsTTL      time.Duration `mapstructure:"user_forms_ttl"`
	ResponsesTTL      time.Duration `mapstructure:"responses_ttl"`
	CompressThreshold int           `mapstructure:"compress_threshold"`
}

// AuthConfig holds bearer token verification settings.
// Tokens are issued elsewhere; this service only verifies them.
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience"`
}

// StripeConfig holds Stripe billing configuration.
type StripeConfig struct {
	SecretKey       string `mapstructure:"secret_key"`
	PublishableKey  string `mapstructure:"publishable_key"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
	ProPriceID      string `mapstructure:"pro_price_id"`
	BusinessPriceID string `mapstructure:"business_price_id"`
	SuccessURL      string `mapstructure:"success_url"`
	CancelURL       string `mapstructure:"cancel_url"`
}

// WebhooksConfig controls retention of the inbound webhook event log.
type WebhooksConfig struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// RateLimitConfig holds API rate limiting parameters.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// Load reads configuration from files and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/formvista")

	v.SetEnvPrefix("FORMVISTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Secrets have no default, so AutomaticEnv alone will not surface them on Unmarshal.
	for _, key := range []string{
		"auth.jwt_secret",
		"stripe.secret_key",
		"stripe.publishable_key",
		"stripe.webhook_secret",
		"stripe.pro_price_id",
		"stripe.business_price_id",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Server.Environment != "dev" && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required outside dev")
	}
	if c.Cache.FormTTL <= 0 || c.Cache.BlocksTTL <= 0 || c.Cache.UserFormsTTL <= 0 || c.Cache.ResponsesTTL <= 0 {
		return errors.New("cache TTLs must be positive")
	}
	return nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "dev")
	v.SetDefault("server.api_version", "1.0.0")
	v.SetDefault("server.cors_origins", []string{"http://localhost:*"})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "formvista")
	v.SetDefault("database.password", "formvista")
	v.SetDefault("database.database", "formvista")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Responses change often, so their pages expire much sooner than forms.
	v.SetDefault("cache.form_ttl", "1h")
	v.SetDefault("cache.blocks_ttl", "1h")
	v.SetDefault("cache.user_forms_ttl", "5m")
	v.SetDefault("cache.responses_ttl", "1m")
	v.SetDefault("cache.compress_threshold", 1024)

	v.SetDefault("auth.jwt_issuer", "")
	v.SetDefault("auth.jwt_audience", "")

	v.SetDefault("stripe.success_url", "http://localhost:3000/billing/success")
	v.SetDefault("stripe.cancel_url", "http://localhost:3000/billing/cancel")

	v.SetDefault("webhooks.retention", "2160h") // 90 days
	v.SetDefault("webhooks.prune_interval", "24h")

	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.burst", 20)
}

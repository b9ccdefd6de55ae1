// Package config provides configuration management for the value-lab application.
package config

import (
	"fmt"
	"time"
)

// Ledger storage backends
const (
	LedgerBackendMemory   = "memory"
	LedgerBackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Ledger    LedgerConfig    `mapstructure:"ledger" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	OddsFeed  OddsFeedConfig  `mapstructure:"odds_feed" validate:"required"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// LedgerConfig selects where ledger rows are stored
type LedgerConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory postgres"`
}

// DatabaseConfig represents database connection configuration. Required only
// for the postgres ledger backend.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// OddsFeedConfig represents the odds feed provider configuration
type OddsFeedConfig struct {
	APIURL              string   `mapstructure:"api_url" validate:"required,url"`
	APIKey              string   `mapstructure:"api_key"`
	Sport               string   `mapstructure:"sport" validate:"required"`
	Regions             string   `mapstructure:"regions" validate:"required"`
	PreferredBookmakers []string `mapstructure:"preferred_bookmakers"`
	NormalizeNames      bool     `mapstructure:"normalize_names"`
	TimeoutSeconds      int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts       int      `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond  float64  `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CacheTTLSeconds     int      `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// AnalysisConfig represents the natural-language analysis service configuration
type AnalysisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	APIURL         string `mapstructure:"api_url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	Instructions   string `mapstructure:"instructions"`
}

// PortfolioConfig represents reporting configuration
type PortfolioConfig struct {
	SeriesOrder        string `mapstructure:"series_order" validate:"omitempty,seriesorder"`
	DistributionBins   int    `mapstructure:"distribution_bins" validate:"omitempty,gt=0,lte=100"`
	LastGoodTTLSeconds int    `mapstructure:"last_good_ttl_seconds" validate:"gte=0"`
}

// SchedulerConfig represents the background job schedule
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	ReconcileCron   string `mapstructure:"reconcile_cron" validate:"omitempty,cron"`
	FeedRefreshCron string `mapstructure:"feed_refresh_cron" validate:"omitempty,cron"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Address                string   `mapstructure:"address" validate:"required"`
	HealthPort             int      `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SecretsConfig locates the AWS Secrets Manager secret overlaid on startup
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesPostgres reports whether the ledger lives in PostgreSQL
func (c *Config) UsesPostgres() bool {
	return c.Ledger.Backend == LedgerBackendPostgres
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FeedCacheTTL returns how long a feed snapshot is reused
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.OddsFeed.CacheTTLSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown deadline, 10s when unset
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

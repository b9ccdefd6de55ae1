package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "VALUE_LAB"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. A missing file is not an error: defaults and environment variables
// are used instead.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the configuration from the file named by
// VALUE_LAB_CONFIG_PATH, when set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "value-lab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("ledger.backend", LedgerBackendMemory)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "value_lab")
	v.SetDefault("database.user", "value_lab")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("odds_feed.api_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_feed.api_key", "")
	v.SetDefault("odds_feed.sport", "mma_mixed_martial_arts")
	v.SetDefault("odds_feed.regions", "eu")
	v.SetDefault("odds_feed.preferred_bookmakers", []string{"pinnacle", "bet365"})
	v.SetDefault("odds_feed.normalize_names", false)
	v.SetDefault("odds_feed.timeout_seconds", 15)
	v.SetDefault("odds_feed.retry_attempts", 3)
	v.SetDefault("odds_feed.rate_limit_per_second", 1.0)
	v.SetDefault("odds_feed.cache_ttl_seconds", 300)

	v.SetDefault("analysis.enabled", false)
	v.SetDefault("analysis.api_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("analysis.api_key", "")
	v.SetDefault("analysis.model", "gemini-1.5-flash")
	v.SetDefault("analysis.timeout_seconds", 60)

	v.SetDefault("portfolio.series_order", "insertion")
	v.SetDefault("portfolio.distribution_bins", 10)
	v.SetDefault("portfolio.last_good_ttl_seconds", 0)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reconcile_cron", "*/5 * * * *")
	v.SetDefault("scheduler.feed_refresh_cron", "*/15 * * * *")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "eu-west-1")
	v.SetDefault("secrets.secret_name", "value-lab/credentials")
}

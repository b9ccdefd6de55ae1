package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("seriesorder", validateSeriesOrder)
	_ = v.RegisterValidation("cron", validateCron)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateSeriesOrder(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "insertion", "chronological":
		return true
	default:
		return false
	}
}

// validateCron accepts standard five-field cron specs and descriptors such as @hourly
func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.UsesPostgres() {
		var missing []string
		if cfg.Database.Host == "" {
			missing = append(missing, "host")
		}
		if cfg.Database.Port == 0 {
			missing = append(missing, "port")
		}
		if cfg.Database.Name == "" {
			missing = append(missing, "name")
		}
		if cfg.Database.User == "" {
			missing = append(missing, "user")
		}
		if cfg.Database.SSLMode == "" {
			missing = append(missing, "ssl_mode")
		}
		if cfg.Database.MaxConnections == 0 {
			missing = append(missing, "max_connections")
		}
		if len(missing) > 0 {
			return fmt.Errorf("postgres ledger backend requires database settings: %s", strings.Join(missing, ", "))
		}
	}

	if cfg.Analysis.Enabled {
		if cfg.Analysis.APIURL == "" || cfg.Analysis.Model == "" {
			return fmt.Errorf("analysis requires api_url and model when enabled")
		}
		if cfg.Analysis.APIKey == "" {
			return fmt.Errorf("analysis requires an api_key when enabled")
		}
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.ReconcileCron == "" && cfg.Scheduler.FeedRefreshCron == "" {
		return fmt.Errorf("scheduler is enabled but no job schedule is configured")
	}

	if cfg.IsProduction() && cfg.UsesPostgres() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' is required\n", field))
		case "url":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value))
		case "min", "max":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag))
		case "gt", "gte", "lt", "lte":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag))
		case "environment":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field))
		case "loglevel":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field))
		case "seriesorder":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must be one of: insertion, chronological\n", field))
		case "cron":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' is not a valid cron expression: '%v'\n", field, value))
		case "oneof":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value))
		default:
			errMsg.WriteString(fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag))
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg.String())
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.UsesPostgres() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
		}
		if isTestCredential(cfg.OddsFeed.APIKey) {
			return fmt.Errorf("production environment should not use a placeholder odds feed key")
		}
		if cfg.Ledger.Backend == LedgerBackendMemory {
			return fmt.Errorf("production environment requires a durable ledger backend")
		}
	}
	return nil
}

var testCredentialPattern = regexp.MustCompile(`(?i)(test|demo|example|placeholder|your_)`)

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	return testCredentialPattern.MatchString(credential)
}

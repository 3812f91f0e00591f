package config

import (
	"fmt"
	"net"
	"strings"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects all validation errors in a configuration.
type ValidationError struct {
	// Errors contains every validation error found.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError
// listing every rule that fails, or nil when the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateCosting(&cfg.Costing)...)
	errs = append(errs, validateBonus(&cfg.Bonus)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{"server.listen_address", fmt.Sprintf("invalid host:port: %v", err)})
	}

	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, FieldError{"storage.db_path", "required for the sqlite backend"})
		}
	default:
		errs = append(errs, FieldError{"storage.backend", fmt.Sprintf("unknown backend %q (expected memory or sqlite)", cfg.Backend)})
	}

	return errs
}

func validateCosting(cfg *CostingConfig) []FieldError {
	var errs []FieldError

	if cfg.InputRatePerSecond < 0 {
		errs = append(errs, FieldError{"costing.input_rate_per_second", "must not be negative"})
	}
	if cfg.OutputRatePerSecond < 0 {
		errs = append(errs, FieldError{"costing.output_rate_per_second", "must not be negative"})
	}
	if cfg.BudgetedRatePerMinute <= 0 {
		errs = append(errs, FieldError{"costing.budgeted_rate_per_minute", "must be positive"})
	}

	return errs
}

func validateBonus(cfg *BonusConfig) []FieldError {
	var errs []FieldError

	if cfg.Threshold <= 0 {
		errs = append(errs, FieldError{"bonus.threshold", "must be positive"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level)})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("unknown format %q", cfg.Logging.Format)})
	}

	return errs
}

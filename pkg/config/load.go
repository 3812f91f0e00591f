package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies METERD_* environment variable overrides. Environment variables
// always take precedence over file values.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// Default returns a fully defaulted configuration without reading a
// file. Used when no config file is given.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides applies METERD_SECTION_FIELD environment overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("METERD_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("METERD_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	if val := os.Getenv("METERD_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("METERD_STORAGE_DB_PATH"); val != "" {
		cfg.Storage.DBPath = val
	}

	if val := os.Getenv("METERD_PLANS_FILE"); val != "" {
		cfg.Plans.File = val
	}
	if val := os.Getenv("METERD_PLANS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Plans.Watch = b
		}
	}

	if val := os.Getenv("METERD_COSTING_INPUT_RATE_PER_SECOND"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Costing.InputRatePerSecond = f
		}
	}
	if val := os.Getenv("METERD_COSTING_OUTPUT_RATE_PER_SECOND"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Costing.OutputRatePerSecond = f
		}
	}
	if val := os.Getenv("METERD_COSTING_BUDGETED_RATE_PER_MINUTE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Costing.BudgetedRatePerMinute = f
		}
	}

	if val := os.Getenv("METERD_BONUS_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Bonus.Threshold = f
		}
	}

	if val := os.Getenv("METERD_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("METERD_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}

	if val := os.Getenv("METERD_MAINTENANCE_CHECKPOINT_SCHEDULE"); val != "" {
		cfg.Maintenance.CheckpointSchedule = val
	}
}

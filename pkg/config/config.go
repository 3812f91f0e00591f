package config

import "time"

// Config is the root configuration structure for meterd.
type Config struct {
	// Server contains the HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Storage contains the usage ledger store configuration.
	Storage StorageConfig `yaml:"storage"`

	// Plans contains the plan table configuration.
	Plans PlansConfig `yaml:"plans"`

	// Costing contains the pricing inputs for cost accounting.
	Costing CostingConfig `yaml:"costing"`

	// Bonus contains the savings-to-bonus conversion settings.
	Bonus BonusConfig `yaml:"bonus"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Maintenance contains storage maintenance settings.
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8750"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 15s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is how long idle keep-alive connections are held.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig contains ledger store settings.
type StorageConfig struct {
	// Backend selects the store implementation: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// DBPath is the SQLite database file (sqlite backend only).
	// Default: "meterd.db"
	DBPath string `yaml:"db_path"`

	// BusyTimeout is the SQLite lock wait timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PlansConfig contains plan table settings.
type PlansConfig struct {
	// File is the YAML plan table path. Empty means the built-in
	// defaults are used.
	File string `yaml:"file"`

	// Watch enables hot reload of the plan table file.
	Watch bool `yaml:"watch"`
}

// CostingConfig contains the pricing inputs, in currency units.
type CostingConfig struct {
	// Currency is the display currency code.
	// Default: "INR"
	Currency string `yaml:"currency"`

	// InputRatePerSecond is the actual cost of one speech-in second.
	// Default: 0.030
	InputRatePerSecond float64 `yaml:"input_rate_per_second"`

	// OutputRatePerSecond is the actual cost of one speech-out second.
	// Default: 0.012
	OutputRatePerSecond float64 `yaml:"output_rate_per_second"`

	// BudgetedRatePerMinute is the flat per-minute budget rate.
	// Default: 1.42
	BudgetedRatePerMinute float64 `yaml:"budgeted_rate_per_minute"`
}

// BonusConfig contains savings-to-bonus settings.
type BonusConfig struct {
	// Threshold is the savings amount that converts into one bonus
	// minute. Default: 1.00
	Threshold float64 `yaml:"threshold"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes /metrics on the API server.
	// Default: true
	Enabled *bool `yaml:"enabled"`
}

// MaintenanceConfig contains storage maintenance settings.
type MaintenanceConfig struct {
	// CheckpointSchedule is a cron expression for SQLite WAL
	// checkpoints. Empty disables scheduled maintenance.
	CheckpointSchedule string `yaml:"checkpoint_schedule"`
}

// MetricsEnabled reports whether the /metrics endpoint is on.
func (c *Config) MetricsEnabled() bool {
	return c.Telemetry.Metrics.Enabled == nil || *c.Telemetry.Metrics.Enabled
}

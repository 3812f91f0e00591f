package config

import "time"

// ApplyDefaults fills unset configuration fields with default values.
// It is called by LoadConfig before validation.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8750"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = "meterd.db"
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = 5 * time.Second
	}

	// Costing defaults
	if cfg.Costing.Currency == "" {
		cfg.Costing.Currency = "INR"
	}
	if cfg.Costing.InputRatePerSecond == 0 {
		cfg.Costing.InputRatePerSecond = 0.030
	}
	if cfg.Costing.OutputRatePerSecond == 0 {
		cfg.Costing.OutputRatePerSecond = 0.012
	}
	if cfg.Costing.BudgetedRatePerMinute == 0 {
		cfg.Costing.BudgetedRatePerMinute = 1.42
	}

	// Bonus defaults
	if cfg.Bonus.Threshold == 0 {
		cfg.Bonus.Threshold = 1.00
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
}

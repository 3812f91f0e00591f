package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"vaani-hq/meterd/pkg/config"
	"vaani-hq/meterd/pkg/quota"
	"vaani-hq/meterd/pkg/quota/cost"
	"vaani-hq/meterd/pkg/quota/ledger"
	"vaani-hq/meterd/pkg/quota/plan"
	"vaani-hq/meterd/pkg/server"
	"vaani-hq/meterd/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the meterd API server",
	Long: `Start the meterd API server with the specified configuration.

The server listens on the configured address and serves the admission,
usage commit, and stats endpoints backed by the usage ledger store.

Examples:
  # Start with default config
  meterd run

  # Start with custom config
  meterd run --config /etc/meterd/config.yaml

  # Override listen address
  meterd run --listen 0.0.0.0:8750

  # Validate config without starting server
  meterd run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	slog.SetDefault(logger)

	// Load the plan table before dry-run exits so --dry-run also
	// vets the plans file.
	resolver, err := buildResolver(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load plan table: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		if cfg.Plans.File != "" {
			fmt.Printf("✓ Plan table valid: %s\n", cfg.Plans.File)
		}
		return nil
	}

	fmt.Printf("meterd v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	store, checkpointer, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	defer store.Close()
	fmt.Printf("✓ Ledger store initialized (%s)\n", cfg.Storage.Backend)

	rates := cost.Rates{
		InputPerSecond:    cfg.Costing.InputRatePerSecond,
		OutputPerSecond:   cfg.Costing.OutputRatePerSecond,
		BudgetedPerMinute: cfg.Costing.BudgetedRatePerMinute,
	}

	opts := []quota.Option{quota.WithLogger(logger)}
	if cfg.MetricsEnabled() {
		opts = append(opts, quota.WithMetrics(quota.NewMetrics()))
	}
	service := quota.New(resolver, store, rates, cfg.Bonus.Threshold, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot reload of the plan table
	if cfg.Plans.Watch && cfg.Plans.File != "" {
		watcher, err := plan.NewWatcher(cfg.Plans.File, resolver, logger)
		if err != nil {
			return fmt.Errorf("failed to watch plan table: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("plan table watcher stopped", "error", err)
			}
		}()
		fmt.Printf("✓ Watching plan table: %s\n", cfg.Plans.File)
	}

	// Scheduled WAL checkpoints (sqlite only)
	if checkpointer != nil && cfg.Maintenance.CheckpointSchedule != "" {
		scheduler := ledger.NewScheduler(checkpointer, cfg.Maintenance.CheckpointSchedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start maintenance scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}

	srv := server.NewServer(&cfg.Server, service, logger, cfg.MetricsEnabled())

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.MetricsEnabled() {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Blocks until a shutdown signal or server failure.
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func buildResolver(cfg *config.Config, logger *slog.Logger) (*plan.Resolver, error) {
	if cfg.Plans.File == "" {
		logger.Info("using built-in plan table")
		return plan.NewResolver(plan.Defaults()), nil
	}

	table, err := plan.LoadFile(cfg.Plans.File)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded plan table", "path", cfg.Plans.File, "plans", len(table))
	return plan.NewResolver(table), nil
}

func buildStore(cfg *config.Config) (ledger.Store, ledger.Checkpointer, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		store, err := ledger.NewSQLiteStoreWithConfig(ledger.SQLiteConfig{
			DBPath:      cfg.Storage.DBPath,
			BusyTimeout: cfg.Storage.BusyTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "memory":
		return ledger.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

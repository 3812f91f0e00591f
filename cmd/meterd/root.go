package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meterd",
	Short: "meterd - voice-minutes quota metering service",
	Long: `Meterd is a quota metering service for per-user voice minutes.

It enforces plan allowances for voice interactions, providing:
  - Tiered plan policies (free, plus, pro, apex)
  - Daily minute quotas with input/output sub-budgets
  - Hourly rate limiting and per-request duration caps
  - Cost accounting with savings-funded bonus minutes
  - Durable usage ledgers with lazy window resets`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

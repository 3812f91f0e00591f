package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"vaani-hq/meterd/pkg/config"
	"vaani-hq/meterd/pkg/quota/plan"
)

var validateFlags struct {
	plansFile string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and plan table",
	Long: `Validate the meterd configuration file and plan table without
starting the server.

The validate command checks:
  - Configuration file syntax and field constraints
  - Plan table syntax and per-tier policy sanity
  - Sub-budget shares for each tier not exceeding one combined

Examples:
  # Validate the default config
  meterd validate

  # Validate a specific config
  meterd validate --config /etc/meterd/config.yaml

  # Validate a plan table directly
  meterd validate --plans plans.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.plansFile, "plans", "", "plan table file (uses config if not specified)")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)

	plansFile := validateFlags.plansFile
	if plansFile == "" {
		plansFile = cfg.Plans.File
	}

	var table map[plan.Tier]plan.Policy
	if plansFile == "" {
		table = plan.Defaults()
		fmt.Println("✓ Using built-in plan table")
	} else {
		table, err = plan.LoadFile(plansFile)
		if err != nil {
			return fmt.Errorf("invalid plan table: %w", err)
		}
		fmt.Printf("✓ Plan table valid: %s\n", plansFile)
	}

	fmt.Println()
	fmt.Printf("Plans: %d\n", len(table))
	for _, tier := range plan.NewResolver(table).Tiers() {
		policy := table[tier]
		if !policy.Allowed() {
			fmt.Printf("  %-6s voice disabled\n", tier)
			continue
		}
		fmt.Printf("  %-6s %.0fm/day, %.0fs/request, %d req/hour (in %.0f%%, out %.0f%%)\n",
			tier,
			policy.DailyMinutes,
			policy.MaxRequestSeconds,
			policy.RequestsPerHour,
			policy.InputShare*100,
			policy.OutputShare*100,
		)
	}

	return nil
}

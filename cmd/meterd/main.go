// Meterd is a per-user voice-minutes quota metering service.
//
// It tracks voice usage against plan allowances, providing:
//   - Tiered plan policies (free, plus, pro, apex)
//   - Daily minute quotas with input/output sub-budgets
//   - Hourly rate limiting and per-request duration caps
//   - Cost accounting with savings-funded bonus minutes
//   - Durable usage ledgers (SQLite) with lazy window resets
//
// Usage:
//
//	# Start server with default configuration
//	meterd run
//
//	# Start with custom configuration file
//	meterd run --config /path/to/config.yaml
//
//	# Validate configuration and plan table without starting
//	meterd validate
//
//	# Show version information
//	meterd version
package main

func main() {
	Execute()
}

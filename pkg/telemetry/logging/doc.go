// Package logging builds the structured logger used across meterd.
//
// The logger is a log/slog.Logger configured from the telemetry section
// of the service configuration: level and output format (JSON for
// machines, text for humans at a terminal). Components derive their own
// loggers with With("component", ...).
package logging

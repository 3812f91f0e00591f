// Package config loads and validates the meterd configuration.
//
// Configuration comes from a YAML file, with defaults applied for unset
// fields and METERD_* environment variables taking precedence over the
// file. Validation collects every problem rather than stopping at the
// first, so a broken config surfaces all issues in one run.
//
// There is no package-level singleton: callers load a Config and pass it
// down explicitly, which keeps tests free of global state.
package config

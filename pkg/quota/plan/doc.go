// Package plan resolves subscription tiers to voice quota policies.
//
// A Policy describes what a plan tier buys: daily voice minutes, the hard
// per-request cap, the hourly request rate, and how the daily allowance is
// split between speech-in and speech-out sub-budgets.
//
// The Resolver is the single source of truth for tier limits. Tier names
// are case-insensitive; lookups and table keys are canonicalized to
// uppercase. Unknown tiers resolve to the zero policy (no voice access)
// so that admission control fails closed without a special case.
//
// Policies can be loaded from a YAML plan table and hot-reloaded via the
// file watcher:
//
//	table, err := plan.LoadFile("plans.yaml")
//	resolver := plan.NewResolver(table)
//
//	watcher, err := plan.NewWatcher("plans.yaml", resolver, logger)
//	go watcher.Watch(ctx)
package plan

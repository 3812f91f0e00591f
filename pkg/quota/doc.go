// Package quota meters per-user voice minutes and decides whether
// interactions may proceed.
//
// # Overview
//
// The package orchestrates the leaf subpackages into three operations:
//
//   - Check: admission control for an incoming interaction of a given
//     kind (speech-in or speech-out) and requested length
//   - Commit: atomic recording of a completed interaction, including
//     cost accounting, savings-to-bonus accrual, and lazy window resets
//   - Stats: read-only snapshot of usage, remaining budgets, and bonus
//     state for display
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - plan: tier-to-policy resolution with YAML table and hot reload
//   - window: lazy daily/hourly window evaluation
//   - cost: actual/budgeted cost and savings accounting
//   - bonus: savings-to-bonus-minute conversion
//   - ledger: durable per-user counters (memory, SQLite)
//
// # Usage
//
//	resolver := plan.NewResolver(plan.Defaults())
//	store := ledger.NewMemoryStore()
//	service := quota.New(resolver, store, cost.DefaultRates(), bonus.DefaultThreshold)
//
//	decision, err := service.Check(ctx, "user-1", plan.TierPro, quota.KindOutput, 30)
//	if err != nil {
//	    // infrastructure failure: fail closed, do not serve the request
//	}
//	if !decision.Allowed {
//	    // policy denial: decision.Reason says why
//	}
//
//	// ... external synthesis/transcription happens here ...
//
//	receipt, err := service.Commit(ctx, "user-1", plan.TierPro, quota.Event{
//	    OutputSeconds: 28.4,
//	    ActualCost:    0.41,
//	})
//
// # Error Handling
//
// Policy violations are not errors: they come back as a Decision with
// Allowed=false and a ReasonCode. Errors are reserved for infrastructure
// failures (ledger store unreachable) and boundary validation (empty
// user, negative seconds). On error the caller must deny the request;
// admission never fails open.
//
// # Concurrency
//
// Check is read-only. Commit serializes per user with a striped mutex on
// top of the store's atomic increment, so concurrent commits for one
// user cannot corrupt the savings accumulator or double-convert bonus
// minutes. The check-then-commit pair as a whole is deliberately not
// transactional: the external synthesis call sits between the two, and
// holding a reservation across it would serialize all voice traffic for
// a user. The resulting over-spend is bounded by the per-request cap.
package quota

// Package ledger provides durable per-user usage counters.
//
// A Ledger row holds the raw counters for one user: daily minute and
// sub-budget usage, the hourly request counter, lifetime request count,
// the savings accumulator, and earned/used bonus minutes. The row is a
// passive store; window semantics live in the window package and budget
// enforcement lives in the quota package.
//
// # Backends
//
//   - MemoryStore: in-process map, used in tests and single-shot tools
//   - SQLiteStore: durable single-file store for production instances
//
// Both implement Store. Increment applies a whole Delta as one atomic
// operation, so two concurrent commits for the same user cannot lose an
// update. Delta carries reset flags: when a commit observes that a time
// window has rolled over, the corresponding counters are overwritten by
// the delta instead of added to, making the lazy reset physical in the
// same atomic write.
//
// A Ledger row is created implicitly: Get returns an all-zero row for an
// unknown user and the first Increment upserts it. Rows are never deleted
// by this subsystem.
package ledger

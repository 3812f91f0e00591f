// Package window evaluates lazy time-window resets for usage counters.
//
// The ledger stores raw counters plus a single last-activity timestamp.
// Nothing resets them on a schedule; instead every reader recomputes
// whether the stored values still belong to the current day or hour. A
// counter whose window has passed is treated as zero, and only becomes
// physically zero on the next write.
//
// Two windows are derived from one timestamp:
//
//   - daily: bounded by local midnight, covering the minute counters
//   - hourly: bounded by the top of the clock hour, covering the
//     request-rate counter
//
// Evaluate is a pure function of (now, ledger) so the same inputs always
// yield the same corrected view. Any component that wants a correct
// counter value must go through this package rather than reading raw
// storage.
package window

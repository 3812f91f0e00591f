// Package cost turns consumed voice seconds into money figures.
//
// Every interaction is priced two ways: the actual vendor cost (per-second
// input and output rates, or the amount the synthesis layer reported) and
// the budgeted cost (a flat per-minute rate the plan is priced against).
// The difference, floored at zero, is the savings that feed bonus accrual.
package cost

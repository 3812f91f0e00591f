// Package bonus converts accumulated savings into whole bonus minutes.
//
// Savings below the conversion threshold accumulate in the ledger; each
// accrual folds new savings in and pays out floor(total/threshold) whole
// minutes, carrying the remainder. The accumulator is therefore always
// strictly below the threshold after an accrual runs, even when a single
// interaction's savings span several thresholds at once.
package bonus

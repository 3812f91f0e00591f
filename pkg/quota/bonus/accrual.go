package bonus

import "math"

// DefaultThreshold is the savings amount that converts into one bonus
// minute, in currency units.
const DefaultThreshold = 1.00

// epsilon absorbs float drift so savings that land exactly on a
// threshold convert instead of carrying ~1.0 forever.
const epsilon = 1e-9

// Result is the outcome of one accrual fold.
type Result struct {
	// Remainder is the new accumulator value, always < threshold.
	Remainder float64

	// Awarded is the number of whole bonus minutes paid out.
	Awarded int64
}

// Accrue folds savings into the accumulator and converts whole threshold
// amounts into bonus minutes.
//
// A non-positive threshold disables conversion: savings accumulate but
// nothing is ever awarded.
func Accrue(accumulated, savings, threshold float64) Result {
	total := accumulated + savings

	if threshold <= 0 {
		return Result{Remainder: total}
	}

	awarded := int64(math.Floor((total + epsilon) / threshold))
	if awarded < 0 {
		awarded = 0
	}

	remainder := total - float64(awarded)*threshold
	if remainder < 0 {
		remainder = 0
	}

	return Result{
		Remainder: remainder,
		Awarded:   awarded,
	}
}

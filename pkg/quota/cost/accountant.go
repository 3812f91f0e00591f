package cost

import (
	"fmt"
	"math"
)

// Rates contains the pricing inputs for cost accounting.
// Amounts are in the deployment currency (INR by default).
type Rates struct {
	// InputPerSecond is the actual cost of one second of speech-in.
	InputPerSecond float64 `yaml:"input_per_second"`

	// OutputPerSecond is the actual cost of one second of speech-out.
	OutputPerSecond float64 `yaml:"output_per_second"`

	// BudgetedPerMinute is the flat per-minute rate the plan allowance
	// is budgeted against.
	BudgetedPerMinute float64 `yaml:"budgeted_per_minute"`
}

// DefaultRates returns the standard pricing table.
func DefaultRates() Rates {
	return Rates{
		InputPerSecond:    0.030,
		OutputPerSecond:   0.012,
		BudgetedPerMinute: 1.42,
	}
}

// Breakdown is the result of pricing one interaction.
type Breakdown struct {
	// ActualCost is what the interaction actually cost.
	ActualCost float64

	// BudgetedCost is what the interaction was budgeted to cost at the
	// flat per-minute rate.
	BudgetedCost float64

	// Savings is budgeted minus actual, floored at zero.
	Savings float64

	// RatioLabel is the integer-rounded percentage split of input to
	// output seconds, e.g. "20:80". Display only.
	RatioLabel string
}

// Compute prices an interaction from its input/output seconds using the
// configured per-second rates.
func Compute(rates Rates, inputSeconds, outputSeconds float64) Breakdown {
	actual := inputSeconds*rates.InputPerSecond + outputSeconds*rates.OutputPerSecond
	return breakdown(rates, inputSeconds, outputSeconds, actual)
}

// ComputeWithActual prices an interaction using a vendor-reported actual
// cost instead of the rate table. A non-positive actualCost falls back to
// Compute.
func ComputeWithActual(rates Rates, inputSeconds, outputSeconds, actualCost float64) Breakdown {
	if actualCost <= 0 {
		return Compute(rates, inputSeconds, outputSeconds)
	}
	return breakdown(rates, inputSeconds, outputSeconds, actualCost)
}

func breakdown(rates Rates, inputSeconds, outputSeconds, actual float64) Breakdown {
	budgeted := ((inputSeconds + outputSeconds) / 60.0) * rates.BudgetedPerMinute

	savings := budgeted - actual
	if savings < 0 {
		savings = 0
	}

	return Breakdown{
		ActualCost:   actual,
		BudgetedCost: budgeted,
		Savings:      savings,
		RatioLabel:   ratioLabel(inputSeconds, outputSeconds),
	}
}

// ratioLabel renders the input:output split as integer percentages.
func ratioLabel(inputSeconds, outputSeconds float64) string {
	total := inputSeconds + outputSeconds
	if total <= 0 {
		return "0:0"
	}

	in := int(math.Round(inputSeconds / total * 100))
	return fmt.Sprintf("%d:%d", in, 100-in)
}

package plan

// Tier is a named subscription level.
type Tier string

const (
	// TierFree has no voice access.
	TierFree Tier = "FREE"

	// TierPlus is the entry paid tier.
	TierPlus Tier = "PLUS"

	// TierPro is the mid paid tier.
	TierPro Tier = "PRO"

	// TierApex is the top paid tier.
	TierApex Tier = "APEX"
)

// Default sub-budget shares applied when a policy leaves them unset.
const (
	DefaultInputShare  = 0.20
	DefaultOutputShare = 0.80
)

// Policy describes the voice quota a plan tier grants.
// A zero-valued Policy means no voice access at all.
type Policy struct {
	// Tier is the plan tier this policy belongs to.
	Tier Tier `yaml:"-"`

	// DailyMinutes is the base allowance of voice minutes per day.
	// Zero means the tier has no voice access.
	DailyMinutes float64 `yaml:"daily_minutes"`

	// MaxRequestSeconds is the hard cap on a single interaction,
	// enforced regardless of remaining quota.
	MaxRequestSeconds float64 `yaml:"max_request_seconds"`

	// RequestsPerHour caps interactions within a clock hour.
	RequestsPerHour int64 `yaml:"requests_per_hour"`

	// InputShare is the fraction of DailyMinutes reserved for
	// speech-in. Defaults to 0.20 when unset.
	InputShare float64 `yaml:"input_share"`

	// OutputShare is the fraction of DailyMinutes reserved for
	// speech-out. Defaults to 0.80 when unset.
	OutputShare float64 `yaml:"output_share"`
}

// Allowed reports whether the tier has any voice access.
func (p Policy) Allowed() bool {
	return p.DailyMinutes > 0
}

// InputBudgetMinutes is the daily speech-in sub-budget in minutes.
func (p Policy) InputBudgetMinutes() float64 {
	return p.DailyMinutes * p.InputShare
}

// OutputBudgetMinutes is the daily speech-out sub-budget in minutes.
func (p Policy) OutputBudgetMinutes() float64 {
	return p.DailyMinutes * p.OutputShare
}

// withDefaults returns a copy of the policy with unset shares filled in.
func (p Policy) withDefaults(tier Tier) Policy {
	p.Tier = tier
	if p.InputShare == 0 {
		p.InputShare = DefaultInputShare
	}
	if p.OutputShare == 0 {
		p.OutputShare = DefaultOutputShare
	}
	return p
}

// Defaults returns the built-in plan table. These values are used when no
// plan table file is configured and serve as the baseline for tests.
func Defaults() map[Tier]Policy {
	return map[Tier]Policy{
		TierFree: {},
		TierPlus: {
			DailyMinutes:      10,
			MaxRequestSeconds: 60,
			RequestsPerHour:   20,
		},
		TierPro: {
			DailyMinutes:      15,
			MaxRequestSeconds: 120,
			RequestsPerHour:   30,
		},
		TierApex: {
			DailyMinutes:      30,
			MaxRequestSeconds: 180,
			RequestsPerHour:   40,
		},
	}
}

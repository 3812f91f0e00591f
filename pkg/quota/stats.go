package quota

import (
	"context"
	"fmt"
	"time"

	"vaani-hq/meterd/pkg/quota/plan"
	"vaani-hq/meterd/pkg/quota/window"
)

// Usage is one used/limit/remaining triple in a Snapshot.
type Usage struct {
	Used      float64 `json:"used"`
	Limit     float64 `json:"limit"`
	Remaining float64 `json:"remaining"`
}

// Snapshot is the user-facing projection of policy, window-corrected
// ledger state, and bonus balance. It is read-only; rendering one never
// mutates storage.
type Snapshot struct {
	UserID string    `json:"user_id"`
	Tier   plan.Tier `json:"tier"`

	// VoiceEnabled is false for tiers with no voice access.
	VoiceEnabled bool `json:"voice_enabled"`

	// DailyMinutes covers the base daily allowance; the limit includes
	// available bonus minutes.
	DailyMinutes Usage `json:"daily_minutes"`

	// InputSeconds and OutputSeconds cover the per-direction
	// sub-budgets, in seconds.
	InputSeconds  Usage `json:"input_seconds"`
	OutputSeconds Usage `json:"output_seconds"`

	// HourlyRequests covers the hourly rate dimension.
	HourlyRequests Usage `json:"hourly_requests"`

	BonusMinutesEarned    float64 `json:"bonus_minutes_earned"`
	BonusMinutesUsed      float64 `json:"bonus_minutes_used"`
	BonusMinutesAvailable float64 `json:"bonus_minutes_available"`

	SavingsAccumulated float64 `json:"savings_accumulated"`
	SavingsToNextBonus float64 `json:"savings_to_next_bonus"`

	RequestCount int64 `json:"request_count"`

	DailyResetAt  time.Time `json:"daily_reset_at"`
	HourlyResetAt time.Time `json:"hourly_reset_at"`
}

// Stats builds the usage snapshot for a user.
func (s *Service) Stats(ctx context.Context, userID string, tier plan.Tier) (*Snapshot, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	policy := s.plans.Resolve(tier)

	led, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage ledger for %q: %w", userID, err)
	}

	view := window.Evaluate(s.now(), led)
	bonusAvailable := led.BonusMinutesAvailable()

	dailyLimit := policy.DailyMinutes + bonusAvailable

	return &Snapshot{
		UserID:       userID,
		Tier:         policy.Tier,
		VoiceEnabled: policy.Allowed(),

		DailyMinutes: Usage{
			Used:      view.TotalMinutesUsed,
			Limit:     dailyLimit,
			Remaining: clampFloor(dailyLimit - view.TotalMinutesUsed),
		},
		InputSeconds: Usage{
			Used:      view.InputSecondsUsed,
			Limit:     policy.InputBudgetMinutes() * 60,
			Remaining: clampFloor(policy.InputBudgetMinutes()*60 - view.InputSecondsUsed),
		},
		OutputSeconds: Usage{
			Used:      view.OutputSecondsUsed,
			Limit:     policy.OutputBudgetMinutes() * 60,
			Remaining: clampFloor(policy.OutputBudgetMinutes()*60 - view.OutputSecondsUsed),
		},
		HourlyRequests: Usage{
			Used:      float64(view.RequestsThisHour),
			Limit:     float64(policy.RequestsPerHour),
			Remaining: float64(clampFloorInt(policy.RequestsPerHour - view.RequestsThisHour)),
		},

		BonusMinutesEarned:    led.BonusMinutesEarned,
		BonusMinutesUsed:      led.BonusMinutesUsed,
		BonusMinutesAvailable: bonusAvailable,

		SavingsAccumulated: led.SavingsAccumulated,
		SavingsToNextBonus: clampFloor(s.bonusThreshold - led.SavingsAccumulated),

		RequestCount: led.RequestCount,

		DailyResetAt:  view.DailyResetAt,
		HourlyResetAt: view.HourlyResetAt,
	}, nil
}

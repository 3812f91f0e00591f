package quota

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"vaani-hq/meterd/pkg/quota/bonus"
	"vaani-hq/meterd/pkg/quota/cost"
	"vaani-hq/meterd/pkg/quota/ledger"
	"vaani-hq/meterd/pkg/quota/plan"
	"vaani-hq/meterd/pkg/quota/window"
)

// Commit records a completed interaction against the user's ledger.
//
// One call folds everything into a single atomic ledger delta: the
// consumed seconds and minutes, request counters, lastUsedAt, the cost
// and savings of the interaction, any bonus minutes the savings
// unlocked, and any bonus minutes the usage consumed. When a window
// boundary was crossed since the last write, the delta also carries the
// physical reset of the stale counters.
//
// Commits for the same user are serialized, so the savings accumulator
// and bonus conversion behave exactly as if interactions completed one
// at a time. If the external call failed or timed out, Commit must
// simply not be invoked; there is no partial charge.
func (s *Service) Commit(ctx context.Context, userID string, tier plan.Tier, event Event) (*Receipt, error) {
	started := time.Now()

	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	led, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage ledger for %q: %w", userID, err)
	}

	now := s.now()
	view := window.Evaluate(now, led)
	policy := s.plans.Resolve(tier)

	breakdown := cost.ComputeWithActual(s.rates, event.InputSeconds, event.OutputSeconds, event.ActualCost)
	accrual := bonus.Accrue(led.SavingsAccumulated, breakdown.Savings, s.bonusThreshold)

	minutes := event.Seconds() / 60
	bonusConsumed := bonusConsumption(policy, view, led.BonusMinutesAvailable()+float64(accrual.Awarded), minutes)

	delta := ledger.Delta{
		Minutes:       minutes,
		InputSeconds:  event.InputSeconds,
		OutputSeconds: event.OutputSeconds,
		Requests:      1,
		HourRequests:  1,

		// The accumulator must land on the accrual remainder; under the
		// per-user lock the stored value still equals what we read.
		Savings:     accrual.Remainder - led.SavingsAccumulated,
		BonusEarned: float64(accrual.Awarded),
		BonusUsed:   bonusConsumed,

		LastUsedAt:  now,
		ResetDaily:  view.DailyStale,
		ResetHourly: view.HourlyStale,
	}

	if err := s.store.Increment(ctx, userID, delta); err != nil {
		return nil, fmt.Errorf("failed to commit usage for %q: %w", userID, err)
	}

	receipt := &Receipt{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Cost:                 breakdown,
		BonusMinutesAwarded:  accrual.Awarded,
		BonusMinutesConsumed: bonusConsumed,
		CommittedAt:          now,
	}

	s.metrics.RecordCommit(event, receipt, time.Since(started).Seconds())
	s.logger.Info("usage committed",
		"receipt", receipt.ID,
		"user", userID,
		"tier", tier,
		"input_seconds", event.InputSeconds,
		"output_seconds", event.OutputSeconds,
		"actual_cost", breakdown.ActualCost,
		"savings", breakdown.Savings,
		"ratio", breakdown.RatioLabel,
		"bonus_awarded", accrual.Awarded,
	)

	return receipt, nil
}

// bonusConsumption charges the slice of this interaction that lands
// above the base daily allowance to the bonus balance.
//
// Only the overflow delta is charged: minutes below the base allowance
// never touch bonus, and overflow already charged by earlier commits is
// not charged twice. The result is clamped to the available balance so
// used never exceeds earned even when admission raced.
func bonusConsumption(policy plan.Policy, view window.View, available, minutes float64) float64 {
	overflowBefore := clampRange(view.TotalMinutesUsed-policy.DailyMinutes, 0, available)
	overflowAfter := clampRange(view.TotalMinutesUsed+minutes-policy.DailyMinutes, 0, available)

	consumed := overflowAfter - overflowBefore
	if consumed < 0 {
		return 0
	}
	return consumed
}

func validateEvent(event Event) error {
	for _, seconds := range []float64{event.InputSeconds, event.OutputSeconds} {
		if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidSeconds, seconds)
		}
	}
	if event.Seconds() <= 0 {
		return ErrEmptyEvent
	}
	return nil
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

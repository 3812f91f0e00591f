package quota

import (
	"context"
	"fmt"
	"math"
	"time"

	"vaani-hq/meterd/pkg/quota/plan"
	"vaani-hq/meterd/pkg/quota/window"
)

// floatSlack absorbs accumulated float error in budget comparisons so a
// user who has consumed exactly their allowance is not denied a
// zero-cost margin early, nor admitted past it.
const floatSlack = 1e-9

// Check decides whether an interaction of the given kind and length may
// proceed for the user right now.
//
// Checks run in fixed order and the first failure wins:
//
//  1. plan access (zero daily minutes means no voice)
//  2. per-request cap (absolute, independent of remaining quota)
//  3. hourly request rate
//  4. daily minutes, with bonus minutes counted as a top-up
//  5. kind-specific sub-budget, without bonus minutes
//
// A denial is a value, not an error. Errors mean validation failures or
// an unreachable ledger store; on error the caller must deny (fail
// closed), never assume unlimited quota.
func (s *Service) Check(ctx context.Context, userID string, tier plan.Tier, kind Kind, requestedSeconds float64) (*Decision, error) {
	started := time.Now()

	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if requestedSeconds <= 0 || math.IsNaN(requestedSeconds) || math.IsInf(requestedSeconds, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeconds, requestedSeconds)
	}

	policy := s.plans.Resolve(tier)

	// Plan access is decided before any ledger I/O: a voiceless tier
	// needs no counters to be denied.
	if !policy.Allowed() {
		decision := &Decision{Allowed: false, Reason: ReasonPlanNotAllowed}
		s.finishCheck(decision, userID, tier, kind, requestedSeconds, started)
		return decision, nil
	}

	led, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage ledger for %q: %w", userID, err)
	}

	view := window.Evaluate(s.now(), led)
	bonusAvailable := led.BonusMinutesAvailable()
	remaining := remainingOf(policy, view, bonusAvailable)

	decision := &Decision{Allowed: true, Remaining: remaining}
	switch {
	case requestedSeconds > policy.MaxRequestSeconds+floatSlack:
		decision.Allowed = false
		decision.Reason = ReasonRequestTooLong

	case view.RequestsThisHour >= policy.RequestsPerHour:
		decision.Allowed = false
		decision.Reason = ReasonHourlyRateExceeded

	case view.TotalMinutesUsed+requestedSeconds/60 > policy.DailyMinutes+bonusAvailable+floatSlack:
		decision.Allowed = false
		decision.Reason = ReasonDailyQuotaExceeded

	case exceedsSubBudget(policy, view, kind, requestedSeconds):
		decision.Allowed = false
		decision.Reason = ReasonSubBudgetExceeded
	}

	s.finishCheck(decision, userID, tier, kind, requestedSeconds, started)
	return decision, nil
}

// exceedsSubBudget checks the kind-specific share of the daily
// allowance. Bonus minutes never count here: they top up the daily
// ceiling, not a particular direction.
func exceedsSubBudget(policy plan.Policy, view window.View, kind Kind, requestedSeconds float64) bool {
	var usedSeconds, budgetMinutes float64
	switch kind {
	case KindInput:
		usedSeconds = view.InputSecondsUsed
		budgetMinutes = policy.InputBudgetMinutes()
	case KindOutput:
		usedSeconds = view.OutputSecondsUsed
		budgetMinutes = policy.OutputBudgetMinutes()
	}

	return usedSeconds/60+requestedSeconds/60 > budgetMinutes+floatSlack
}

// remainingOf computes the headroom figures reported in every Decision.
func remainingOf(policy plan.Policy, view window.View, bonusAvailable float64) Remaining {
	return Remaining{
		DailyMinutes:   clampFloor(policy.DailyMinutes + bonusAvailable - view.TotalMinutesUsed),
		InputSeconds:   clampFloor(policy.InputBudgetMinutes()*60 - view.InputSecondsUsed),
		OutputSeconds:  clampFloor(policy.OutputBudgetMinutes()*60 - view.OutputSecondsUsed),
		HourlyRequests: clampFloorInt(policy.RequestsPerHour - view.RequestsThisHour),
		BonusMinutes:   bonusAvailable,
		DailyResetAt:   view.DailyResetAt,
		HourlyResetAt:  view.HourlyResetAt,
	}
}

func (s *Service) finishCheck(decision *Decision, userID string, tier plan.Tier, kind Kind, requestedSeconds float64, started time.Time) {
	s.metrics.RecordCheck(decision, time.Since(started).Seconds())

	if decision.Allowed {
		s.logger.Debug("admission allowed",
			"user", userID, "tier", tier, "kind", kind,
			"requested_seconds", requestedSeconds,
			"daily_minutes_remaining", decision.Remaining.DailyMinutes)
		return
	}

	s.logger.Info("admission denied",
		"user", userID, "tier", tier, "kind", kind,
		"requested_seconds", requestedSeconds,
		"reason", decision.Reason)
}

func clampFloor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampFloorInt(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

package quota

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"vaani-hq/meterd/pkg/quota/ledger"
	"vaani-hq/meterd/pkg/quota/plan"
)

func TestCommit_Basic(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	receipt, err := service.Commit(ctx, "user-1", plan.TierPro, Event{InputSeconds: 12, OutputSeconds: 48})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if receipt.ID == "" {
		t.Error("Expected a receipt id")
	}
	if receipt.UserID != "user-1" {
		t.Errorf("Expected receipt for user-1, got %q", receipt.UserID)
	}

	led, _ := store.Get(ctx, "user-1")
	if led.TotalMinutesUsed != 1 {
		t.Errorf("Expected 1 minute recorded, got %v", led.TotalMinutesUsed)
	}
	if led.InputSecondsUsed != 12 || led.OutputSecondsUsed != 48 {
		t.Errorf("Expected 12/48 second counters, got %v/%v", led.InputSecondsUsed, led.OutputSecondsUsed)
	}
	if led.RequestCount != 1 || led.RequestsThisHour != 1 {
		t.Errorf("Expected request counters at 1, got %d/%d", led.RequestCount, led.RequestsThisHour)
	}
}

func TestCommit_CostAndSavings(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	// 12s in, 48s out at default rates: actual 0.936, budgeted 1.42,
	// savings 0.484. Below the 1.00 threshold, so no award yet.
	receipt, err := service.Commit(ctx, "user-1", plan.TierPro, Event{InputSeconds: 12, OutputSeconds: 48})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if math.Abs(receipt.Cost.ActualCost-0.936) > 1e-9 {
		t.Errorf("Expected actual cost 0.936, got %v", receipt.Cost.ActualCost)
	}
	if math.Abs(receipt.Cost.Savings-0.484) > 1e-9 {
		t.Errorf("Expected savings 0.484, got %v", receipt.Cost.Savings)
	}
	if receipt.BonusMinutesAwarded != 0 {
		t.Errorf("Expected no bonus yet, got %d", receipt.BonusMinutesAwarded)
	}

	led, _ := store.Get(ctx, "user-1")
	if math.Abs(led.SavingsAccumulated-0.484) > 1e-9 {
		t.Errorf("Expected accumulator 0.484, got %v", led.SavingsAccumulated)
	}
}

func TestCommit_BonusUnlock(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	// Seed 0.94 accumulated savings, then commit an interaction that
	// saves 0.10 more: crossing 1.00 awards one minute and carries 0.04.
	seedLedger(t, store, service, ledger.Delta{Savings: 0.94})

	receipt, err := service.Commit(ctx, "user-1", plan.TierPro, Event{OutputSeconds: 60, ActualCost: 1.32})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if math.Abs(receipt.Cost.Savings-0.10) > 1e-9 {
		t.Fatalf("Expected savings 0.10, got %v", receipt.Cost.Savings)
	}
	if receipt.BonusMinutesAwarded != 1 {
		t.Errorf("Expected 1 bonus minute unlocked, got %d", receipt.BonusMinutesAwarded)
	}

	led, _ := store.Get(ctx, "user-1")
	if math.Abs(led.SavingsAccumulated-0.04) > 1e-9 {
		t.Errorf("Expected remainder 0.04, got %v", led.SavingsAccumulated)
	}
	if led.BonusMinutesEarned != 1 {
		t.Errorf("Expected 1 bonus minute earned, got %v", led.BonusMinutesEarned)
	}
}

func TestCommit_VendorCostOverridesRates(t *testing.T) {
	service, _, _ := newTestService(t)

	receipt, err := service.Commit(context.Background(), "user-1", plan.TierPro, Event{OutputSeconds: 60, ActualCost: 0.90})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if receipt.Cost.ActualCost != 0.90 {
		t.Errorf("Expected vendor-reported cost 0.90, got %v", receipt.Cost.ActualCost)
	}
}

func TestCommit_BonusConsumption(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	// User is 30 seconds short of PRO's 15 minute allowance with 2
	// bonus minutes banked. A 90 second interaction spills 60 seconds
	// past the base allowance; exactly that overflow is charged to
	// bonus.
	seedLedger(t, store, service, ledger.Delta{Minutes: 14.5, InputSeconds: 150, OutputSeconds: 720, BonusEarned: 2})

	receipt, err := service.Commit(ctx, "user-1", plan.TierPro, Event{InputSeconds: 90})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if math.Abs(receipt.BonusMinutesConsumed-1) > 1e-9 {
		t.Errorf("Expected 1 bonus minute consumed, got %v", receipt.BonusMinutesConsumed)
	}

	led, _ := store.Get(ctx, "user-1")
	if math.Abs(led.BonusMinutesUsed-1) > 1e-9 {
		t.Errorf("Expected 1 bonus minute recorded used, got %v", led.BonusMinutesUsed)
	}
	if math.Abs(led.BonusMinutesAvailable()-1) > 1e-9 {
		t.Errorf("Expected 1 bonus minute left, got %v", led.BonusMinutesAvailable())
	}
}

func TestCommit_BonusConsumptionClamped(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	// Overflow larger than the bonus balance: used never exceeds
	// earned. Vendor cost matches budgeted so no new minutes unlock
	// mid-test.
	seedLedger(t, store, service, ledger.Delta{Minutes: 15, InputSeconds: 180, OutputSeconds: 720, BonusEarned: 0.5})

	receipt, err := service.Commit(ctx, "user-1", plan.TierPro, Event{OutputSeconds: 120, ActualCost: 2.84})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if math.Abs(receipt.BonusMinutesConsumed-0.5) > 1e-9 {
		t.Errorf("Expected consumption clamped to 0.5, got %v", receipt.BonusMinutesConsumed)
	}

	led, _ := store.Get(ctx, "user-1")
	if led.BonusMinutesUsed > led.BonusMinutesEarned+1e-9 {
		t.Errorf("Bonus used %v exceeds earned %v", led.BonusMinutesUsed, led.BonusMinutesEarned)
	}
}

func TestCommit_NoBonusChargeBelowAllowance(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	seedLedger(t, store, service, ledger.Delta{Minutes: 5, OutputSeconds: 300, BonusEarned: 3})

	receipt, err := service.Commit(ctx, "user-1", plan.TierPro, Event{OutputSeconds: 60})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if receipt.BonusMinutesConsumed != 0 {
		t.Errorf("Expected no bonus charge below the base allowance, got %v", receipt.BonusMinutesConsumed)
	}
}

func TestCommit_LazyDailyReset(t *testing.T) {
	service, store, clock := newTestService(t)
	ctx := context.Background()

	if _, err := service.Commit(ctx, "user-1", plan.TierPro, Event{OutputSeconds: 300}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	clock.Advance(24 * time.Hour)

	// The first commit of the new day physically resets the daily
	// counters and applies the new usage in the same write.
	if _, err := service.Commit(ctx, "user-1", plan.TierPro, Event{OutputSeconds: 60}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	led, _ := store.Get(ctx, "user-1")
	if led.TotalMinutesUsed != 1 {
		t.Errorf("Expected daily minutes reset to 1, got %v", led.TotalMinutesUsed)
	}
	if led.OutputSecondsUsed != 60 {
		t.Errorf("Expected output seconds reset to 60, got %v", led.OutputSecondsUsed)
	}
	// Lifetime state survives the reset.
	if led.RequestCount != 2 {
		t.Errorf("Expected lifetime count 2, got %d", led.RequestCount)
	}
}

func TestCommit_BonusSurvivesDailyReset(t *testing.T) {
	service, store, clock := newTestService(t)
	ctx := context.Background()

	seedLedger(t, store, service, ledger.Delta{Minutes: 5, OutputSeconds: 300, BonusEarned: 2, Savings: 0.5})

	clock.Advance(48 * time.Hour)

	if _, err := service.Commit(ctx, "user-1", plan.TierPro, Event{OutputSeconds: 30}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	led, _ := store.Get(ctx, "user-1")
	if led.BonusMinutesEarned != 2 {
		t.Errorf("Expected bonus balance to survive resets, got %v", led.BonusMinutesEarned)
	}
	if led.SavingsAccumulated < 0.5 {
		t.Errorf("Expected savings accumulator to survive resets, got %v", led.SavingsAccumulated)
	}
}

func TestCommit_ValidationErrors(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.Commit(ctx, "", plan.TierPro, Event{InputSeconds: 5}); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("Expected ErrEmptyUserID, got %v", err)
	}
	if _, err := service.Commit(ctx, "user-1", plan.TierPro, Event{}); !errors.Is(err, ErrEmptyEvent) {
		t.Errorf("Expected ErrEmptyEvent, got %v", err)
	}
	if _, err := service.Commit(ctx, "user-1", plan.TierPro, Event{InputSeconds: -5}); !errors.Is(err, ErrInvalidSeconds) {
		t.Errorf("Expected ErrInvalidSeconds, got %v", err)
	}
	if _, err := service.Commit(ctx, "user-1", plan.TierPro, Event{InputSeconds: math.NaN()}); !errors.Is(err, ErrInvalidSeconds) {
		t.Errorf("Expected ErrInvalidSeconds for NaN, got %v", err)
	}
}

func TestCommit_ConcurrentSameUser(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.Commit(ctx, "user-1", plan.TierApex, Event{OutputSeconds: 6}); err != nil {
				t.Errorf("Commit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	led, _ := store.Get(ctx, "user-1")
	if math.Abs(led.TotalMinutesUsed-2) > 1e-9 {
		t.Errorf("Expected 2 minutes after 20 commits, got %v", led.TotalMinutesUsed)
	}
	if led.RequestCount != 20 {
		t.Errorf("Expected 20 requests, got %d", led.RequestCount)
	}
	// Serialized commits keep the accumulator below the threshold.
	if led.SavingsAccumulated >= 1.0 {
		t.Errorf("Expected accumulator below threshold, got %v", led.SavingsAccumulated)
	}
}

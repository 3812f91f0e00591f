package window

import (
	"testing"
	"time"

	"vaani-hq/meterd/pkg/quota/ledger"
)

func TestEvaluate_SameHour(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	led := &ledger.Ledger{
		TotalMinutesUsed:  5,
		InputSecondsUsed:  60,
		OutputSecondsUsed: 240,
		RequestsThisHour:  3,
		LastUsedAt:        now.Add(-10 * time.Minute),
	}

	view := Evaluate(now, led)

	if view.DailyStale || view.HourlyStale {
		t.Errorf("Expected no stale windows, got daily=%v hourly=%v", view.DailyStale, view.HourlyStale)
	}
	if view.TotalMinutesUsed != 5 || view.RequestsThisHour != 3 {
		t.Errorf("Expected counters carried, got minutes=%v requests=%d", view.TotalMinutesUsed, view.RequestsThisHour)
	}
}

func TestEvaluate_NewHourSameDay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 5, 0, 0, time.UTC)
	led := &ledger.Ledger{
		TotalMinutesUsed: 5,
		RequestsThisHour: 19,
		LastUsedAt:       time.Date(2026, time.March, 10, 13, 55, 0, 0, time.UTC),
	}

	view := Evaluate(now, led)

	if view.DailyStale {
		t.Error("Expected daily window still fresh")
	}
	if !view.HourlyStale {
		t.Error("Expected hourly window stale")
	}
	if view.TotalMinutesUsed != 5 {
		t.Errorf("Expected daily minutes carried, got %v", view.TotalMinutesUsed)
	}
	if view.RequestsThisHour != 0 {
		t.Errorf("Expected hourly counter zeroed, got %d", view.RequestsThisHour)
	}
}

func TestEvaluate_NewDay(t *testing.T) {
	now := time.Date(2026, time.March, 11, 0, 5, 0, 0, time.UTC)
	led := &ledger.Ledger{
		TotalMinutesUsed:  14,
		InputSecondsUsed:  120,
		OutputSecondsUsed: 480,
		RequestsThisHour:  10,
		LastUsedAt:        time.Date(2026, time.March, 10, 23, 58, 0, 0, time.UTC),
	}

	view := Evaluate(now, led)

	if !view.DailyStale || !view.HourlyStale {
		t.Errorf("Expected both windows stale, got daily=%v hourly=%v", view.DailyStale, view.HourlyStale)
	}
	if view.TotalMinutesUsed != 0 || view.InputSecondsUsed != 0 || view.RequestsThisHour != 0 {
		t.Errorf("Expected zeroed counters, got %+v", view)
	}
}

func TestEvaluate_ZeroLedger(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	view := Evaluate(now, &ledger.Ledger{})

	// A never-used ledger has a zero LastUsedAt, which is before any
	// boundary. Both windows report stale and all counters read zero.
	if !view.DailyStale || !view.HourlyStale {
		t.Error("Expected zero ledger to read as stale in both windows")
	}
}

func TestEvaluate_ResetTimes(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata not available")
	}

	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, loc)
	view := Evaluate(now, &ledger.Ledger{LastUsedAt: now})

	wantDaily := time.Date(2026, time.March, 11, 0, 0, 0, 0, loc)
	if !view.DailyResetAt.Equal(wantDaily) {
		t.Errorf("Expected daily reset at %v, got %v", wantDaily, view.DailyResetAt)
	}

	wantHourly := time.Date(2026, time.March, 10, 15, 0, 0, 0, loc)
	if !view.HourlyResetAt.Equal(wantHourly) {
		t.Errorf("Expected hourly reset at %v, got %v", wantHourly, view.HourlyResetAt)
	}
}

func TestStartOfDay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 23, 59, 59, 999, time.UTC)
	want := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	if got := StartOfDay(now); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNextMidnight_MonthBoundary(t *testing.T) {
	now := time.Date(2026, time.February, 28, 18, 0, 0, 0, time.UTC)
	want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	if got := NextMidnight(now); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestStartOfHour(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 45, 30, 0, time.UTC)
	want := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	if got := StartOfHour(now); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

package window

import (
	"time"

	"vaani-hq/meterd/pkg/quota/ledger"
)

// View is the window-corrected projection of a ledger's counters.
type View struct {
	// DailyStale is true when the stored daily counters predate today's
	// midnight and were treated as zero.
	DailyStale bool

	// HourlyStale is true when the stored hourly counter predates the
	// top of the current hour and was treated as zero.
	HourlyStale bool

	// TotalMinutesUsed is the corrected daily minute counter.
	TotalMinutesUsed float64

	// InputSecondsUsed is the corrected speech-in counter.
	InputSecondsUsed float64

	// OutputSecondsUsed is the corrected speech-out counter.
	OutputSecondsUsed float64

	// RequestsThisHour is the corrected hourly request counter.
	RequestsThisHour int64

	// DailyResetAt is the next daily boundary (tomorrow's local midnight).
	DailyResetAt time.Time

	// HourlyResetAt is the next hourly boundary (top of the next hour).
	HourlyResetAt time.Time
}

// Evaluate computes the window-corrected view of a ledger at the given
// instant. The ledger itself is not mutated; stale counters are merely
// reported as zero.
func Evaluate(now time.Time, led *ledger.Ledger) View {
	dayStart := StartOfDay(now)
	hourStart := StartOfHour(now)

	view := View{
		DailyStale:  led.LastUsedAt.Before(dayStart),
		HourlyStale: led.LastUsedAt.Before(hourStart),

		DailyResetAt:  NextMidnight(now),
		HourlyResetAt: hourStart.Add(time.Hour),
	}

	if !view.DailyStale {
		view.TotalMinutesUsed = led.TotalMinutesUsed
		view.InputSecondsUsed = led.InputSecondsUsed
		view.OutputSecondsUsed = led.OutputSecondsUsed
	}
	if !view.HourlyStale {
		view.RequestsThisHour = led.RequestsThisHour
	}

	return view
}

// StartOfDay returns local midnight for the given instant.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// NextMidnight returns the first local midnight after the given instant.
// time.Date normalizes the day, so this is DST-safe.
func NextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
}

// StartOfHour returns the top of the clock hour for the given instant.
func StartOfHour(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, t.Hour(), 0, 0, 0, t.Location())
}

package ledger

import (
	"context"
	"errors"
	"time"
)

// Ledger is the persisted usage record for one user.
//
// The minute and second counters are raw stored values: they are only
// meaningful for the window that LastUsedAt falls in. Readers must apply
// window correction (see the window package) before comparing them
// against a policy.
type Ledger struct {
	// UserID identifies the owning user.
	UserID string

	// TotalMinutesUsed is the daily minute counter (speech-in plus
	// speech-out, in minutes).
	TotalMinutesUsed float64

	// InputSecondsUsed is the daily speech-in counter in seconds.
	InputSecondsUsed float64

	// OutputSecondsUsed is the daily speech-out counter in seconds.
	OutputSecondsUsed float64

	// RequestCount is the lifetime number of committed interactions.
	// It is never reset.
	RequestCount int64

	// RequestsThisHour is the hourly request counter.
	RequestsThisHour int64

	// LastUsedAt is when the user last committed usage. All window
	// decisions derive from this single timestamp.
	LastUsedAt time.Time

	// SavingsAccumulated is the running unconverted savings in currency
	// units. Always below the bonus threshold after accrual runs.
	SavingsAccumulated float64

	// BonusMinutesEarned is the lifetime total of bonus minutes
	// converted from savings. Awards happen in whole minutes, so this
	// only ever grows by whole amounts.
	BonusMinutesEarned float64

	// BonusMinutesUsed is the total of bonus minutes already consumed.
	// Consumption follows actual usage and may be fractional. Never
	// exceeds BonusMinutesEarned.
	BonusMinutesUsed float64

	// CreatedAt is when the row was first written.
	CreatedAt time.Time

	// UpdatedAt is when the row was last written.
	UpdatedAt time.Time
}

// BonusMinutesAvailable returns earned minus used, floored at zero.
func (l *Ledger) BonusMinutesAvailable() float64 {
	available := l.BonusMinutesEarned - l.BonusMinutesUsed
	if available < 0 {
		return 0
	}
	return available
}

// Delta is one atomic mutation of a ledger row.
//
// Additive fields are added to the stored counters, except when a reset
// flag is set: then the counters covered by that flag are overwritten by
// the delta values, which applies a lazy window reset and the new usage
// in the same write.
type Delta struct {
	// Minutes is added to TotalMinutesUsed.
	Minutes float64

	// InputSeconds is added to InputSecondsUsed.
	InputSeconds float64

	// OutputSeconds is added to OutputSecondsUsed.
	OutputSeconds float64

	// Requests is added to RequestCount.
	Requests int64

	// HourRequests is added to RequestsThisHour.
	HourRequests int64

	// Savings is added to SavingsAccumulated. It is negative when an
	// accrual run converted threshold amounts into bonus minutes.
	Savings float64

	// BonusEarned is added to BonusMinutesEarned.
	BonusEarned float64

	// BonusUsed is added to BonusMinutesUsed.
	BonusUsed float64

	// LastUsedAt overwrites the stored timestamp when non-zero.
	LastUsedAt time.Time

	// ResetDaily overwrites the daily counters (TotalMinutesUsed,
	// InputSecondsUsed, OutputSecondsUsed) with the delta values
	// instead of adding to them.
	ResetDaily bool

	// ResetHourly overwrites RequestsThisHour with the delta value
	// instead of adding to it.
	ResetHourly bool
}

// Store is the durable backend for ledger rows.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the ledger row for a user. Unknown users get an
	// all-zero row; the row is materialized on first Increment.
	// A storage failure is returned as an error, never as an empty row.
	Get(ctx context.Context, userID string) (*Ledger, error)

	// Increment applies a delta to a user's row as one atomic
	// operation, creating the row if it does not exist.
	Increment(ctx context.Context, userID string, delta Delta) error

	// Close releases backend resources.
	Close() error
}

// Store errors.
var (
	// ErrEmptyUserID is returned for operations without a user ID.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrStoreClosed is returned for operations on a closed store.
	ErrStoreClosed = errors.New("ledger store is closed")
)

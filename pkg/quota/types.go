package quota

import (
	"errors"
	"time"

	"vaani-hq/meterd/pkg/quota/cost"
)

// Kind distinguishes the two metered directions of a voice interaction.
type Kind string

const (
	// KindInput is speech-in (user audio transcribed to text).
	KindInput Kind = "input"

	// KindOutput is speech-out (text synthesized to audio).
	KindOutput Kind = "output"
)

// Valid reports whether the kind is one of the two known directions.
func (k Kind) Valid() bool {
	return k == KindInput || k == KindOutput
}

// ReasonCode identifies why an interaction was denied.
// Reason codes are the only user-visible signal for policy denials;
// callers map them to messaging (upgrade prompt, "try later", etc.).
type ReasonCode string

const (
	// ReasonPlanNotAllowed: the tier has no voice access.
	ReasonPlanNotAllowed ReasonCode = "PlanNotAllowed"

	// ReasonRequestTooLong: the request exceeds the per-request cap.
	ReasonRequestTooLong ReasonCode = "RequestTooLong"

	// ReasonHourlyRateExceeded: the hourly request cap is exhausted.
	ReasonHourlyRateExceeded ReasonCode = "HourlyRateExceeded"

	// ReasonDailyQuotaExceeded: daily minutes plus bonus are exhausted.
	ReasonDailyQuotaExceeded ReasonCode = "DailyQuotaExceeded"

	// ReasonSubBudgetExceeded: the kind-specific sub-budget is exhausted.
	ReasonSubBudgetExceeded ReasonCode = "SubBudgetExceeded"
)

// Remaining carries the window-corrected headroom for each dimension.
// Figures describe the state before the pending request is consumed.
type Remaining struct {
	// DailyMinutes is the remaining daily allowance including bonus.
	DailyMinutes float64

	// InputSeconds is the remaining speech-in sub-budget.
	InputSeconds float64

	// OutputSeconds is the remaining speech-out sub-budget.
	OutputSeconds float64

	// HourlyRequests is the remaining hourly request count.
	HourlyRequests int64

	// BonusMinutes is the unspent bonus balance.
	BonusMinutes float64

	// DailyResetAt is when the daily window rolls over.
	DailyResetAt time.Time

	// HourlyResetAt is when the hourly window rolls over.
	HourlyResetAt time.Time
}

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed indicates whether the interaction may proceed.
	Allowed bool

	// Reason is set when Allowed is false.
	Reason ReasonCode

	// Remaining reports headroom so callers can display "X minutes
	// left" without a second round trip.
	Remaining Remaining
}

// Event is the usage produced by one completed interaction. It is fed
// into Commit exactly once and never persisted as its own entity.
type Event struct {
	// InputSeconds is the speech-in duration consumed.
	InputSeconds float64

	// OutputSeconds is the speech-out duration consumed.
	OutputSeconds float64

	// ActualCost is the vendor-reported cost, if the synthesis layer
	// provides one. Zero means "derive from the rate table".
	ActualCost float64
}

// Seconds returns the total duration of the event.
func (e Event) Seconds() float64 {
	return e.InputSeconds + e.OutputSeconds
}

// Receipt describes what a Commit did to the ledger.
type Receipt struct {
	// ID is a unique identifier for this commit, for log correlation.
	ID string

	// UserID is the charged user.
	UserID string

	// Cost is the priced breakdown of the interaction.
	Cost cost.Breakdown

	// BonusMinutesAwarded is how many whole bonus minutes this commit's
	// savings unlocked.
	BonusMinutesAwarded int64

	// BonusMinutesConsumed is how much of the interaction was charged
	// against the bonus balance rather than the base daily allowance.
	BonusMinutesConsumed float64

	// CommittedAt is when the ledger was updated.
	CommittedAt time.Time
}

// Boundary validation errors. These indicate caller bugs and are
// surfaced before any ledger I/O is attempted.
var (
	// ErrEmptyUserID is returned when no user ID is supplied.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrInvalidKind is returned for a kind other than input/output.
	ErrInvalidKind = errors.New("kind must be input or output")

	// ErrInvalidSeconds is returned for non-positive or non-finite
	// durations.
	ErrInvalidSeconds = errors.New("seconds must be a positive finite number")

	// ErrEmptyEvent is returned for a usage event with no duration.
	ErrEmptyEvent = errors.New("usage event must consume at least some seconds")
)

package booking

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsActive marks the statuses that occupy a slot for conflict purposes.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// legalTransitions is the full state machine. Terminal states have no exits.
var legalTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range legalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially-refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

type Source string

const (
	SourceWebsite  Source = "website"
	SourcePhone    Source = "phone"
	SourceWalkIn   Source = "walk-in"
	SourceReferral Source = "referral"
	SourceSocial   Source = "social"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceWebsite, SourcePhone, SourceWalkIn, SourceReferral, SourceSocial:
		return true
	default:
		return false
	}
}

type ReminderKind string

const (
	Reminder24h ReminderKind = "24h"
	Reminder2h  ReminderKind = "2h"
)

// reminderWindow is the trailing eligibility window before an appointment:
// the reminder is due while remaining time is in (lower, upper]. The poller
// must run at a finer grain than upper-lower or the window can be missed.
type reminderWindow struct {
	lower time.Duration
	upper time.Duration
}

var reminderWindows = map[ReminderKind]reminderWindow{
	Reminder24h: {lower: 23 * time.Hour, upper: 24 * time.Hour},
	Reminder2h:  {lower: 90 * time.Minute, upper: 2 * time.Hour},
}

func (k ReminderKind) IsValid() bool {
	_, ok := reminderWindows[k]
	return ok
}

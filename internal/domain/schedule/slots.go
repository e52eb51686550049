package schedule

import (
	"errors"
	"time"
)

var ErrInvalidStep = errors.New("slot step must be positive")

// ClosureReason explains an empty slot list for a non-business day.
type ClosureReason string

const (
	ReasonOpen           ClosureReason = ""
	ReasonNotBusinessDay ClosureReason = "closed on this day of the week"
)

// GenerateSlots produces every candidate start time for a service of the
// given duration on the given date, walking from opening time at a fixed
// step. A slot is kept only when the full appointment still ends by closing
// time. The function is pure: it never consults stored bookings.
func GenerateSlots(date time.Time, hours BusinessHours, stepMinutes, serviceDurationMinutes int) ([]TimeOfDay, ClosureReason, error) {
	if stepMinutes <= 0 {
		return nil, ReasonOpen, ErrInvalidStep
	}
	if serviceDurationMinutes <= 0 {
		return nil, ReasonOpen, ErrInvalidInterval
	}

	if !hours.IsBusinessDay(date.Weekday()) {
		return []TimeOfDay{}, ReasonNotBusinessDay, nil
	}

	slots := make([]TimeOfDay, 0)
	for m := hours.Open().Minutes(); m+serviceDurationMinutes <= hours.Close().Minutes(); m += stepMinutes {
		slots = append(slots, TimeOfDay{minutes: m})
	}

	return slots, ReasonOpen, nil
}

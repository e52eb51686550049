package shared

import (
	"strings"
	"time"

	"salon-booking-api/internal/domain/schedule"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/pkg/errs"
)

var (
	ErrInvalidTimeZone    = errs.New("invalid salon timezone")
	ErrInvalidBusinessDay = errs.New("invalid business day name")
)

// SalonPolicy is the booking policy resolved from configuration once at
// startup: everything slot generation, conflict checking and cancellation
// need.
type SalonPolicy struct {
	Location           *time.Location
	Hours              schedule.BusinessHours
	SlotStepMinutes    int
	BufferMinutes      int
	CancellationWindow time.Duration
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func NewSalonPolicy(cfg config.SalonConfig) (SalonPolicy, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return SalonPolicy{}, errs.Mark(err, ErrInvalidTimeZone)
	}

	open, err := schedule.ParseTimeOfDay(cfg.OpenTime)
	if err != nil {
		return SalonPolicy{}, err
	}
	close, err := schedule.ParseTimeOfDay(cfg.CloseTime)
	if err != nil {
		return SalonPolicy{}, err
	}

	days := make([]time.Weekday, 0, len(cfg.BusinessDays))
	for _, name := range cfg.BusinessDays {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return SalonPolicy{}, ErrInvalidBusinessDay
		}
		days = append(days, day)
	}

	hours, err := schedule.NewBusinessHours(open, close, days)
	if err != nil {
		return SalonPolicy{}, err
	}

	return SalonPolicy{
		Location:           loc,
		Hours:              hours,
		SlotStepMinutes:    cfg.SlotStepMinutes,
		BufferMinutes:      cfg.BufferMinutes,
		CancellationWindow: cfg.CancellationWindow,
	}, nil
}

// Today truncates the instant to a calendar date in the salon's location.
func (p SalonPolicy) Today(now time.Time) time.Time {
	local := now.In(p.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
}

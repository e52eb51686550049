package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidInterval  = errors.New("invalid interval")
	ErrInvalidHours     = errors.New("closing time must be after opening time")
)

const minutesPerDay = 24 * 60

// TimeOfDay is a minute-granularity wall clock time ("HH:MM").
type TimeOfDay struct {
	minutes int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{minutes: hour*60 + minute}, nil
}

// TimeOfDayFromMinutes rebuilds a TimeOfDay from its minutes-of-day form,
// the representation persisted in storage.
func TimeOfDayFromMinutes(minutes int) (TimeOfDay, error) {
	if minutes < 0 || minutes >= minutesPerDay {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{minutes: minutes}, nil
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return NewTimeOfDay(hour, minute)
}

func (t TimeOfDay) Minutes() int {
	return t.minutes
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.minutes < other.minutes
}

// At anchors the time of day onto a calendar date in the given location.
func (t TimeOfDay) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.minutes/60, t.minutes%60, 0, 0, loc)
}

// Interval is a half-open appointment window [start, start+duration) in
// minutes of the day.
type Interval struct {
	start    int
	duration int
}

func NewInterval(start TimeOfDay, durationMinutes int) (Interval, error) {
	if durationMinutes <= 0 {
		return Interval{}, ErrInvalidInterval
	}
	if start.Minutes()+durationMinutes > minutesPerDay {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{start: start.Minutes(), duration: durationMinutes}, nil
}

func (iv Interval) StartMinutes() int { return iv.start }
func (iv Interval) EndMinutes() int   { return iv.start + iv.duration }
func (iv Interval) Duration() int     { return iv.duration }

func (iv Interval) Start() TimeOfDay {
	return TimeOfDay{minutes: iv.start}
}

// Overlaps reports whether two half-open intervals share any minute.
// Intervals that merely touch do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.start < other.EndMinutes() && other.start < iv.EndMinutes()
}

// Expand widens the interval symmetrically by the buffer, clamped to the day.
func (iv Interval) Expand(bufferMinutes int) Interval {
	if bufferMinutes <= 0 {
		return iv
	}
	start := iv.start - bufferMinutes
	end := iv.EndMinutes() + bufferMinutes
	if start < 0 {
		start = 0
	}
	if end > minutesPerDay {
		end = minutesPerDay
	}
	return Interval{start: start, duration: end - start}
}

// BusinessHours is the bookable window of a single business day.
type BusinessHours struct {
	open  TimeOfDay
	close TimeOfDay
	days  map[time.Weekday]bool
}

func NewBusinessHours(open, close TimeOfDay, days []time.Weekday) (BusinessHours, error) {
	if !open.Before(close) {
		return BusinessHours{}, ErrInvalidHours
	}
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return BusinessHours{open: open, close: close, days: set}, nil
}

func (h BusinessHours) Open() TimeOfDay  { return h.open }
func (h BusinessHours) Close() TimeOfDay { return h.close }

func (h BusinessHours) IsBusinessDay(day time.Weekday) bool {
	return h.days[day]
}

// Contains reports whether the interval fits inside the bookable window.
func (h BusinessHours) Contains(iv Interval) bool {
	return iv.StartMinutes() >= h.open.Minutes() && iv.EndMinutes() <= h.close.Minutes()
}

//go:build unit

package builder

import (
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/schedule"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	ServiceID       uuid.UUID
	ServiceName     string
	Date            time.Time
	StartHour       int
	StartMinute     int
	DurationMinutes int
	AmountCents     int64
	Notes           string
	Source          booking.Source
	FirstTime       bool
	Now             time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane.doe@example.com",
		Phone:           "+1 (555) 123-4567",
		ServiceID:       uuid.New(),
		ServiceName:     "Women's Haircut",
		Date:            time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartHour:       10,
		StartMinute:     0,
		DurationMinutes: 60,
		AmountCents:     6500,
		Notes:           "",
		Source:          booking.SourceWebsite,
		FirstTime:       false,
		Now:             now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	customer, err := booking.NewCustomer(b.FirstName, b.LastName, b.Email, b.Phone)
	if err != nil {
		return nil, err
	}
	start, err := schedule.NewTimeOfDay(b.StartHour, b.StartMinute)
	if err != nil {
		return nil, err
	}
	appt, err := booking.NewAppointment(b.Date, start, b.DurationMinutes)
	if err != nil {
		return nil, err
	}
	return booking.NewBooking(customer, b.ServiceID, b.ServiceName, appt, b.AmountCents, b.Notes, b.Source, b.FirstTime, b.Now)
}

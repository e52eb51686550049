package request

import (
	"strings"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/schedule"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	StartTime string    `json:"start_time" binding:"required"`
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	Email     string    `json:"email" binding:"required"`
	Phone     string    `json:"phone" binding:"required"`
	Notes     string    `json:"notes,omitempty"`
	Source    string    `json:"source,omitempty"`
	FirstTime bool      `json:"first_time,omitempty"`
}

// ParseDate interprets the date in the salon's location so day boundaries
// follow the shop, not the caller.
func (r CreateBookingRequest) ParseDate(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(r.Date), loc)
}

func (r CreateBookingRequest) ParseStart() (schedule.TimeOfDay, error) {
	return schedule.ParseTimeOfDay(strings.TrimSpace(r.StartTime))
}

func (r CreateBookingRequest) ToCustomer() (booking.Customer, error) {
	return booking.NewCustomer(r.FirstName, r.LastName, r.Email, r.Phone)
}

type CancelBookingRequest struct {
	Email  string `json:"email" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateReviewRequest struct {
	Email   string `json:"email" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment,omitempty"`
}

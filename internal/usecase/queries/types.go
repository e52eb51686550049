package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTOs for the read side)
type BookingView struct {
	ID                 uuid.UUID          `json:"id"`
	ServiceID          uuid.UUID          `json:"service_id"`
	ServiceName        string             `json:"service_name"`
	CustomerFirstName  string             `json:"customer_first_name"`
	CustomerLastName   string             `json:"customer_last_name"`
	CustomerEmail      string             `json:"customer_email"`
	CustomerPhone      string             `json:"customer_phone"`
	Date               string             `json:"date"`
	StartTime          string             `json:"start_time"`
	DurationMinutes    int                `json:"duration_minutes"`
	AmountCents        int64              `json:"amount_cents"`
	Status             string             `json:"status"`
	PaymentStatus      string             `json:"payment_status"`
	PaymentID          *uuid.UUID         `json:"payment_id,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	Source             string             `json:"source"`
	FirstTime          bool               `json:"first_time"`
	CancellationReason *string            `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	Review             *BookingReviewView `json:"review,omitempty"`
	Events             []BookingEventView `json:"events,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type BookingListItem struct {
	ID              uuid.UUID `json:"id"`
	ServiceName     string    `json:"service_name"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	AmountCents     int64     `json:"amount_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

type BookingEventView struct {
	Status     string    `json:"status"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

type BookingReviewView struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ServiceView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PaymentView struct {
	ID            uuid.UUID    `json:"id"`
	BookingID     uuid.UUID    `json:"booking_id"`
	ProviderRef   string       `json:"provider_ref"`
	AmountCents   int64        `json:"amount_cents"`
	RefundedCents int64        `json:"refunded_cents"`
	Currency      string       `json:"currency"`
	Status        string       `json:"status"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
	Refunds       []RefundView `json:"refunds,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type RefundView struct {
	ProviderRef string    `json:"provider_ref"`
	AmountCents int64     `json:"amount_cents"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaymentListItem struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type AvailabilityView struct {
	Date      string     `json:"date"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
	Slots     []string   `json:"slots"`
	Closed    bool       `json:"closed"`
	Reason    string     `json:"reason,omitempty"`
}

type StaffView struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type Cursor struct {
	After string
}

type BookingFilters struct {
	Status *string
	From   *time.Time
	To     *time.Time
	Email  *string
}

package response

import (
	"time"

	"salon-booking-api/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID                 uuid.UUID              `json:"id"`
	ServiceID          uuid.UUID              `json:"serviceId"`
	ServiceName        string                 `json:"serviceName"`
	CustomerFirstName  string                 `json:"customerFirstName"`
	CustomerLastName   string                 `json:"customerLastName"`
	CustomerEmail      string                 `json:"customerEmail"`
	CustomerPhone      string                 `json:"customerPhone"`
	Date               string                 `json:"date"`
	StartTime          string                 `json:"startTime"`
	DurationMinutes    int                    `json:"durationMinutes"`
	AmountCents        int64                  `json:"amountCents"`
	Status             string                 `json:"status"`
	PaymentStatus      string                 `json:"paymentStatus"`
	PaymentID          *uuid.UUID             `json:"paymentId,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	Source             string                 `json:"source"`
	FirstTime          bool                   `json:"firstTime"`
	CancellationReason *string                `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time             `json:"cancelledAt,omitempty"`
	Review             *BookingReviewResponse `json:"review,omitempty"`
	Events             []BookingEventResponse `json:"events,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

type BookingEventResponse struct {
	Status     string    `json:"status"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurredAt"`
}

type BookingReviewResponse struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type BookingListResponse struct {
	ID              uuid.UUID `json:"id"`
	ServiceName     string    `json:"serviceName"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	Date            string    `json:"date"`
	StartTime       string    `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	AmountCents     int64     `json:"amountCents"`
	CreatedAt       time.Time `json:"createdAt"`
}

type BookingPageResponse struct {
	Bookings   []*BookingListResponse `json:"bookings"`
	NextCursor *string                `json:"nextCursor,omitempty"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	resp := &BookingResponse{
		ID:                 v.ID,
		ServiceID:          v.ServiceID,
		ServiceName:        v.ServiceName,
		CustomerFirstName:  v.CustomerFirstName,
		CustomerLastName:   v.CustomerLastName,
		CustomerEmail:      v.CustomerEmail,
		CustomerPhone:      v.CustomerPhone,
		Date:               v.Date,
		StartTime:          v.StartTime,
		DurationMinutes:    v.DurationMinutes,
		AmountCents:        v.AmountCents,
		Status:             v.Status,
		PaymentStatus:      v.PaymentStatus,
		PaymentID:          v.PaymentID,
		Notes:              v.Notes,
		Source:             v.Source,
		FirstTime:          v.FirstTime,
		CancellationReason: v.CancellationReason,
		CancelledAt:        v.CancelledAt,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
	if v.Review != nil {
		resp.Review = &BookingReviewResponse{
			Rating:      v.Review.Rating,
			Comment:     v.Review.Comment,
			SubmittedAt: v.Review.SubmittedAt,
		}
	}
	for _, ev := range v.Events {
		resp.Events = append(resp.Events, BookingEventResponse{
			Status:     ev.Status,
			Actor:      ev.Actor,
			OccurredAt: ev.OccurredAt,
		})
	}
	return resp
}

func FromBookingListItem(v *queries.BookingListItem) *BookingListResponse {
	return &BookingListResponse{
		ID:              v.ID,
		ServiceName:     v.ServiceName,
		CustomerName:    v.CustomerName,
		CustomerEmail:   v.CustomerEmail,
		Date:            v.Date,
		StartTime:       v.StartTime,
		DurationMinutes: v.DurationMinutes,
		Status:          v.Status,
		PaymentStatus:   v.PaymentStatus,
		AmountCents:     v.AmountCents,
		CreatedAt:       v.CreatedAt,
	}
}

func FromBookingPage(items []*queries.BookingListItem, next *queries.Cursor) *BookingPageResponse {
	page := &BookingPageResponse{
		Bookings: make([]*BookingListResponse, 0, len(items)),
	}
	for _, item := range items {
		page.Bookings = append(page.Bookings, FromBookingListItem(item))
	}
	if next != nil {
		page.NextCursor = &next.After
	}
	return page
}

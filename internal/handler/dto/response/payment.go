package response

import (
	"time"

	"salon-booking-api/internal/usecase/queries"

	"github.com/google/uuid"
)

type PaymentIntentResponse struct {
	PaymentID    uuid.UUID `json:"paymentId"`
	ProviderRef  string    `json:"providerRef"`
	ClientSecret string    `json:"clientSecret"`
	AmountCents  int64     `json:"amountCents"`
	Currency     string    `json:"currency"`
}

type PaymentResponse struct {
	ID            uuid.UUID        `json:"id"`
	BookingID     uuid.UUID        `json:"bookingId"`
	ProviderRef   string           `json:"providerRef"`
	AmountCents   int64            `json:"amountCents"`
	RefundedCents int64            `json:"refundedCents"`
	Currency      string           `json:"currency"`
	Status        string           `json:"status"`
	PaidAt        *time.Time       `json:"paidAt,omitempty"`
	Refunds       []RefundResponse `json:"refunds,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type RefundResponse struct {
	ProviderRef string    `json:"providerRef"`
	AmountCents int64     `json:"amountCents"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PaymentListResponse struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"bookingId"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PaymentPageResponse struct {
	Payments   []*PaymentListResponse `json:"payments"`
	NextCursor *string                `json:"nextCursor,omitempty"`
}

func FromPaymentView(v *queries.PaymentView) *PaymentResponse {
	resp := &PaymentResponse{
		ID:            v.ID,
		BookingID:     v.BookingID,
		ProviderRef:   v.ProviderRef,
		AmountCents:   v.AmountCents,
		RefundedCents: v.RefundedCents,
		Currency:      v.Currency,
		Status:        v.Status,
		PaidAt:        v.PaidAt,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
	for _, r := range v.Refunds {
		resp.Refunds = append(resp.Refunds, RefundResponse{
			ProviderRef: r.ProviderRef,
			AmountCents: r.AmountCents,
			Reason:      r.Reason,
			CreatedAt:   r.CreatedAt,
		})
	}
	return resp
}

func FromPaymentListItem(v *queries.PaymentListItem) *PaymentListResponse {
	return &PaymentListResponse{
		ID:          v.ID,
		BookingID:   v.BookingID,
		AmountCents: v.AmountCents,
		Currency:    v.Currency,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
	}
}

func FromPaymentPage(items []*queries.PaymentListItem, next *queries.Cursor) *PaymentPageResponse {
	page := &PaymentPageResponse{
		Payments: make([]*PaymentListResponse, 0, len(items)),
	}
	for _, item := range items {
		page.Payments = append(page.Payments, FromPaymentListItem(item))
	}
	if next != nil {
		page.NextCursor = &next.After
	}
	return page
}

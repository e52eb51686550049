package request

import "github.com/google/uuid"

type CreatePaymentIntentRequest struct {
	BookingID   uuid.UUID `json:"booking_id" binding:"required"`
	Email       string    `json:"email" binding:"required"`
	AmountCents int64     `json:"amount_cents" binding:"required,gt=0"`
	Currency    string    `json:"currency" binding:"required,len=3"`
}

type ConfirmPaymentRequest struct {
	ProviderRef string `json:"provider_ref" binding:"required"`
}

type RefundPaymentRequest struct {
	// AmountCents nil means refund the full remaining amount.
	AmountCents *int64 `json:"amount_cents,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

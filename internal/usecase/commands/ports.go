package commands

import (
	"context"

	"github.com/google/uuid"
)

// ProviderIntent mirrors the provider-side payment intent state the
// use cases care about.
type ProviderIntent struct {
	Ref          string
	ClientSecret string
	Status       ProviderIntentStatus
	AmountCents  int64
	Currency     string
}

type ProviderIntentStatus string

const (
	IntentStatusSucceeded       ProviderIntentStatus = "succeeded"
	IntentStatusCanceled        ProviderIntentStatus = "canceled"
	IntentStatusProcessing      ProviderIntentStatus = "processing"
	IntentStatusRequiresPayment ProviderIntentStatus = "requires_payment"
)

type ProviderRefund struct {
	Ref         string
	AmountCents int64
}

// WebhookEvent is a verified provider notification reduced to what the
// payment use case consumes.
type WebhookEvent struct {
	Type        WebhookEventType
	ProviderRef string
}

type WebhookEventType string

const (
	WebhookPaymentSucceeded WebhookEventType = "payment_succeeded"
	WebhookPaymentFailed    WebhookEventType = "payment_failed"
	WebhookIgnored          WebhookEventType = "ignored"
)

// PaymentProvider abstracts the card processor. Implementations must be safe
// for concurrent use.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, bookingID uuid.UUID) (*ProviderIntent, error)
	RetrieveIntent(ctx context.Context, ref string) (*ProviderIntent, error)
	Refund(ctx context.Context, ref string, amountCents int64, reason string) (*ProviderRefund, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

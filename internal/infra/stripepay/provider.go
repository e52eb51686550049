// Package stripepay adapts the Stripe API to the payment provider port.
package stripepay

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/pkg/errs"
	"salon-booking-api/internal/usecase/commands"

	"github.com/google/uuid"
)

var (
	errIntentCreate   = errs.New("failed to create payment intent")
	errIntentRetrieve = errs.New("failed to retrieve payment intent")
	errRefundCreate   = errs.New("failed to create refund")
	errWebhookVerify  = errs.New("webhook signature verification failed")
	errWebhookPayload = errs.New("failed to decode webhook payload")
)

type Provider struct {
	sc            *client.API
	webhookSecret string
}

func NewProvider(cfg config.StripeConfig) *Provider {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return &Provider{sc: sc, webhookSecret: cfg.WebhookSecret}
}

var _ commands.PaymentProvider = (*Provider)(nil)

func (p *Provider) CreateIntent(ctx context.Context, amountCents int64, currency string, bookingID uuid.UUID) (*commands.ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", bookingID.String())

	intent, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, errs.Mark(err, errIntentCreate)
	}

	return toProviderIntent(intent), nil
}

func (p *Provider) RetrieveIntent(ctx context.Context, ref string) (*commands.ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.sc.PaymentIntents.Get(ref, params)
	if err != nil {
		return nil, errs.Mark(err, errIntentRetrieve)
	}

	return toProviderIntent(intent), nil
}

func (p *Provider) Refund(ctx context.Context, ref string, amountCents int64, reason string) (*commands.ProviderRefund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(ref),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	refund, err := p.sc.Refunds.New(params)
	if err != nil {
		return nil, errs.Mark(err, errRefundCreate)
	}

	return &commands.ProviderRefund{Ref: refund.ID, AmountCents: refund.Amount}, nil
}

func (p *Provider) VerifyWebhook(payload []byte, signature string) (*commands.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, errs.Mark(err, errWebhookVerify)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		return &commands.WebhookEvent{Type: commands.WebhookIgnored}, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, errs.Mark(err, errWebhookPayload)
	}

	kind := commands.WebhookPaymentSucceeded
	if event.Type == "payment_intent.payment_failed" {
		kind = commands.WebhookPaymentFailed
	}

	return &commands.WebhookEvent{Type: kind, ProviderRef: intent.ID}, nil
}

func toProviderIntent(intent *stripe.PaymentIntent) *commands.ProviderIntent {
	return &commands.ProviderIntent{
		Ref:          intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       toIntentStatus(intent.Status),
		AmountCents:  intent.Amount,
		Currency:     string(intent.Currency),
	}
}

func toIntentStatus(status stripe.PaymentIntentStatus) commands.ProviderIntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return commands.IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return commands.IntentStatusCanceled
	case stripe.PaymentIntentStatusProcessing:
		return commands.IntentStatusProcessing
	default:
		return commands.IntentStatusRequiresPayment
	}
}

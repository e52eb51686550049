package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/payment"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/errs"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotPayable    = errs.New("booking is not payable")
	ErrAmountMismatch       = errs.New("amount does not match the booking total")
	ErrPaymentNotFound      = errs.New("payment not found")
	ErrPaymentNotSettled    = errs.New("payment is not settled yet")
	ErrPaymentNotRefundable = errs.New("payment is not refundable")
	ErrRefundTooLarge       = errs.New("refund exceeds the remaining amount")
	ErrProviderFailure      = errs.New("payment provider request failed")
	ErrWebhookVerification  = errs.New("webhook verification failed")
)

const paymentCurrency = "usd"

// Actor label recorded when the provider settles or fails a charge.
const ActorProvider = "stripe"

type IntentResult struct {
	PaymentID    uuid.UUID
	ProviderRef  string
	ClientSecret string
	AmountCents  int64
	Currency     string
}

type PaymentCommands interface {
	// CreateIntent starts (or resumes) the checkout for a pending booking.
	// The caller restates the amount it showed the customer; a stale amount
	// is rejected. Calling it again before paying returns the same intent.
	CreateIntent(ctx context.Context, bookingID uuid.UUID, email string, amountCents int64, currency string) (*IntentResult, error)
	// ConfirmPayment is the client-driven settlement path: it asks the
	// provider for the intent's current state and applies the outcome.
	ConfirmPayment(ctx context.Context, providerRef string) (*queries.PaymentView, error)
	// HandleWebhook applies a provider notification. Events the system does
	// not care about are acknowledged without effect.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Refund(ctx context.Context, paymentID uuid.UUID, amountCents *int64, reason, actor string) (*queries.PaymentView, error)
}

type paymentUseCaseImpl struct {
	uow            shared.UnitOfWork
	provider       PaymentProvider
	paymentQueries queries.PaymentQueries
	clock          clock.Clock
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	provider PaymentProvider,
	paymentQueries queries.PaymentQueries,
	clock clock.Clock,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:            uow,
		provider:       provider,
		paymentQueries: paymentQueries,
		clock:          clock,
	}
}

func (u *paymentUseCaseImpl) CreateIntent(ctx context.Context, bookingID uuid.UUID, email string, amountCents int64, currency string) (*IntentResult, error) {
	snap, err := u.payableBooking(ctx, bookingID, email)
	if err != nil {
		return nil, err
	}
	if amountCents != snap.AmountCents || !strings.EqualFold(currency, paymentCurrency) {
		return nil, ErrAmountMismatch
	}

	// Resume an open intent if one exists so double-clicking checkout does
	// not mint a second charge.
	if result, err := u.resumeOpenIntent(ctx, bookingID); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	intent, err := u.provider.CreateIntent(ctx, snap.AmountCents, paymentCurrency, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrProviderFailure)
	}

	entity, err := payment.NewPayment(bookingID, intent.Ref, snap.AmountCents, intent.Currency, u.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !b.Status().IsActive() || b.PaymentStatus() == booking.PaymentStatusPaid {
			return ErrBookingNotPayable
		}

		if err := tx.Payments().Create(ctx, entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		b.AttachPayment(entity.ID(), u.clock.Now())
		return tx.Bookings().UpdateState(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	return &IntentResult{
		PaymentID:    entity.ID(),
		ProviderRef:  intent.Ref,
		ClientSecret: intent.ClientSecret,
		AmountCents:  entity.AmountCents(),
		Currency:     entity.Currency(),
	}, nil
}

func (u *paymentUseCaseImpl) payableBooking(ctx context.Context, bookingID uuid.UUID, email string) (*shared.BookingSnapshot, error) {
	snap, err := u.uow.CommandReads().BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if email != "" && !strings.EqualFold(snap.CustomerEmail, strings.TrimSpace(email)) {
		return nil, ErrBookingAccess
	}
	if snap.Status != booking.StatusPending.String() || snap.PaymentStatus == booking.PaymentStatusPaid.String() {
		return nil, ErrBookingNotPayable
	}
	return snap, nil
}

func (u *paymentUseCaseImpl) resumeOpenIntent(ctx context.Context, bookingID uuid.UUID) (*IntentResult, error) {
	var open *payment.Payment
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindLatestByBookingForUpdate(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if p.Status() == payment.StatusPending {
			open = p
		}
		return nil
	})
	if err != nil || open == nil {
		return nil, err
	}

	intent, err := u.provider.RetrieveIntent(ctx, open.ProviderRef())
	if err != nil {
		return nil, errs.Mark(err, ErrProviderFailure)
	}

	return &IntentResult{
		PaymentID:    open.ID(),
		ProviderRef:  open.ProviderRef(),
		ClientSecret: intent.ClientSecret,
		AmountCents:  open.AmountCents(),
		Currency:     open.Currency(),
	}, nil
}

func (u *paymentUseCaseImpl) ConfirmPayment(ctx context.Context, providerRef string) (*queries.PaymentView, error) {
	intent, err := u.provider.RetrieveIntent(ctx, providerRef)
	if err != nil {
		return nil, errs.Mark(err, ErrProviderFailure)
	}

	switch intent.Status {
	case IntentStatusSucceeded:
		if err := u.recordOutcome(ctx, providerRef, true); err != nil {
			return nil, err
		}
	case IntentStatusCanceled:
		if err := u.recordOutcome(ctx, providerRef, false); err != nil {
			return nil, err
		}
	default:
		return nil, ErrPaymentNotSettled
	}

	return u.viewByProviderRef(ctx, providerRef)
}

func (u *paymentUseCaseImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := u.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return errs.Mark(err, ErrWebhookVerification)
	}

	switch event.Type {
	case WebhookPaymentSucceeded:
		return u.recordOutcome(ctx, event.ProviderRef, true)
	case WebhookPaymentFailed:
		return u.recordOutcome(ctx, event.ProviderRef, false)
	default:
		return nil
	}
}

// recordOutcome is the single settlement path for both the confirm endpoint
// and webhooks. Replays are no-ops, so at-least-once delivery produces
// exactly one confirmed transition and one audit event.
func (u *paymentUseCaseImpl) recordOutcome(ctx context.Context, providerRef string, succeeded bool) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByProviderRefForUpdate(ctx, providerRef)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := u.clock.Now()
		if succeeded {
			if !p.MarkSucceeded(now) {
				return nil
			}
		} else {
			if !p.MarkFailed(now) {
				return nil
			}
		}
		if err := tx.Payments().UpdateState(ctx, p); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		b, err := tx.Bookings().FindByIDForUpdate(ctx, p.BookingID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if !succeeded {
			b.MarkPaymentFailed(p.ID(), now)
			return tx.Bookings().UpdateState(ctx, b)
		}

		ev, changed, err := b.MarkPaid(p.ID(), ActorProvider, now)
		if err != nil {
			// The charge settled but the booking already left the pending
			// state (cancelled in the meantime). Keep the payment record;
			// staff resolve it through a refund.
			slog.Warn("payment settled for a non-payable booking",
				"booking_id", b.ID().String(),
				"payment_id", p.ID().String(),
				"status", b.Status().String())
			return nil
		}
		if !changed {
			return nil
		}
		if err := tx.Bookings().UpdateState(ctx, b); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Bookings().AppendEvent(ctx, b.ID(), ev); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return u.enqueuePaymentNotification(ctx, tx, "booking_confirmed", b.ID())
	})
}

func (u *paymentUseCaseImpl) Refund(ctx context.Context, paymentID uuid.UUID, amountCents *int64, reason, actor string) (*queries.PaymentView, error) {
	view, err := u.paymentQueries.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, queries.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if view.Status != payment.StatusSucceeded.String() {
		return nil, ErrPaymentNotRefundable
	}

	remaining := view.AmountCents - view.RefundedCents
	amount := remaining
	if amountCents != nil {
		amount = *amountCents
	}
	if amount <= 0 || amount > remaining {
		return nil, ErrRefundTooLarge
	}

	refund, err := u.provider.Refund(ctx, view.ProviderRef, amount, reason)
	if err != nil {
		return nil, errs.Mark(err, ErrProviderFailure)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := u.clock.Now()
		fully, err := p.ApplyRefund(refund.Ref, refund.AmountCents, reason, now)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}
		if err := tx.Payments().AddRefund(ctx, p.ID(), p.Refunds()[len(p.Refunds())-1]); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Payments().UpdateState(ctx, p); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		b, err := tx.Bookings().FindByIDForUpdate(ctx, p.BookingID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		ev, err := b.ApplyRefund(fully, actor, now)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}
		if err := tx.Bookings().UpdateState(ctx, b); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if ev != nil {
			if err := tx.Bookings().AppendEvent(ctx, b.ID(), *ev); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			return u.enqueuePaymentNotification(ctx, tx, "booking_cancelled", b.ID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.paymentQueries.GetByID(ctx, paymentID)
}

func (u *paymentUseCaseImpl) viewByProviderRef(ctx context.Context, providerRef string) (*queries.PaymentView, error) {
	var id uuid.UUID
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByProviderRefForUpdate(ctx, providerRef)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		id = p.ID()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.paymentQueries.GetByID(ctx, id)
}

func (u *paymentUseCaseImpl) enqueuePaymentNotification(ctx context.Context, tx shared.Tx, topic string, bookingID uuid.UUID) error {
	payload, err := json.Marshal(map[string]any{
		"booking_id": bookingID,
		"type":       topic,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, "email", topic, payload, u.clock.Now())
}

package payment

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter code")
	ErrEmptyProviderRef   = errors.New("provider reference is required")
	ErrNotRefundable      = errors.New("only succeeded payments can be refunded")
	ErrRefundExceedsTotal = errors.New("cumulative refunds exceed payment amount")
	ErrInvalidRefund      = errors.New("refund amount must be positive")
)

// Refund is one provider-confirmed refund, appended in order.
type Refund struct {
	ProviderRef string
	AmountCents int64
	Reason      string
	CreatedAt   time.Time
}

// Payment mirrors the provider-side lifecycle of one charge. It is created
// when an intent is initiated and mutated only in response to
// provider-reported state changes.
type Payment struct {
	id          uuid.UUID
	bookingID   uuid.UUID
	providerRef string
	amountCents int64
	currency    string
	status      Status
	paidAt      *time.Time
	refunds     []Refund
	createdAt   time.Time
	updatedAt   time.Time
}

func NewPayment(bookingID uuid.UUID, providerRef string, amountCents int64, currency string, now time.Time) (*Payment, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if strings.TrimSpace(providerRef) == "" {
		return nil, ErrEmptyProviderRef
	}

	return &Payment{
		id:          uuid.New(),
		bookingID:   bookingID,
		providerRef: providerRef,
		amountCents: amountCents,
		currency:    currency,
		status:      StatusPending,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructPayment(
	id, bookingID uuid.UUID,
	providerRef string,
	amountCents int64,
	currency string,
	status Status,
	paidAt *time.Time,
	refunds []Refund,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:          id,
		bookingID:   bookingID,
		providerRef: providerRef,
		amountCents: amountCents,
		currency:    currency,
		status:      status,
		paidAt:      paidAt,
		refunds:     refunds,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// MarkSucceeded records a provider success. Returns false on replay so
// at-least-once provider notifications stay idempotent.
func (p *Payment) MarkSucceeded(now time.Time) bool {
	if p.status == StatusSucceeded || p.status == StatusRefunded {
		return false
	}

	p.status = StatusSucceeded
	at := now
	p.paidAt = &at
	p.updatedAt = now
	return true
}

func (p *Payment) MarkFailed(now time.Time) bool {
	if p.status != StatusPending {
		return false
	}
	p.status = StatusFailed
	p.updatedAt = now
	return true
}

// ApplyRefund appends a refund record. The payment flips to refunded only
// when the cumulative refunded amount reaches the original amount; partial
// refunds leave it succeeded. Returns whether the payment is now fully
// refunded.
func (p *Payment) ApplyRefund(providerRef string, amountCents int64, reason string, now time.Time) (bool, error) {
	if p.status != StatusSucceeded {
		return false, ErrNotRefundable
	}
	if amountCents <= 0 {
		return false, ErrInvalidRefund
	}
	if p.RefundedCents()+amountCents > p.amountCents {
		return false, ErrRefundExceedsTotal
	}

	p.refunds = append(p.refunds, Refund{
		ProviderRef: providerRef,
		AmountCents: amountCents,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   now,
	})
	p.updatedAt = now

	fully := p.RefundedCents() == p.amountCents
	if fully {
		p.status = StatusRefunded
	}
	return fully, nil
}

func (p *Payment) RefundedCents() int64 {
	var total int64
	for _, r := range p.refunds {
		total += r.AmountCents
	}
	return total
}

func (p *Payment) ID() uuid.UUID        { return p.id }
func (p *Payment) BookingID() uuid.UUID { return p.bookingID }
func (p *Payment) ProviderRef() string  { return p.providerRef }
func (p *Payment) AmountCents() int64   { return p.amountCents }
func (p *Payment) Currency() string     { return p.currency }
func (p *Payment) Status() Status       { return p.status }
func (p *Payment) PaidAt() *time.Time   { return p.paidAt }
func (p *Payment) Refunds() []Refund    { return p.refunds }
func (p *Payment) CreatedAt() time.Time { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time { return p.updatedAt }

//go:build unit

package builder

import (
	"time"

	"salon-booking-api/internal/domain/payment"

	"github.com/google/uuid"
)

type PaymentBuilder struct {
	BookingID   uuid.UUID
	ProviderRef string
	AmountCents int64
	Currency    string
	Now         time.Time
}

func NewPaymentBuilder() *PaymentBuilder {
	return &PaymentBuilder{
		BookingID:   uuid.New(),
		ProviderRef: "pi_3MtwBwLkdIwHu7ix28a3tqPa",
		AmountCents: 6500,
		Currency:    "usd",
		Now:         time.Now(),
	}
}

func (p *PaymentBuilder) With(mutate func(*PaymentBuilder)) *PaymentBuilder {
	mutate(p)
	return p
}

func (p *PaymentBuilder) BuildDomain() (*payment.Payment, error) {
	return payment.NewPayment(p.BookingID, p.ProviderRef, p.AmountCents, p.Currency, p.Now)
}

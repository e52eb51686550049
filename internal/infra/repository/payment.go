package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/domain/payment"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/shared"
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(dbtx db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: dbtx}
}

var _ shared.PaymentRepository = (*PaymentRepository)(nil)

var paymentColumns = []string{
	"id", "booking_id", "provider_ref", "amount_cents", "currency",
	"status", "paid_at", "created_at", "updated_at",
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query, args, err := qb.Insert("payments").
		Columns(paymentColumns...).
		Values(
			p.ID(), p.BookingID(), p.ProviderRef(), p.AmountCents(), p.Currency(),
			string(p.Status()), p.PaidAt(), p.CreatedAt(), p.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build payment insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create payment", err)
	}

	return nil
}

func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.findOneForUpdate(ctx, sq.Eq{"id": id}, "")
}

func (r *PaymentRepository) FindByProviderRefForUpdate(ctx context.Context, providerRef string) (*payment.Payment, error) {
	return r.findOneForUpdate(ctx, sq.Eq{"provider_ref": providerRef}, "")
}

func (r *PaymentRepository) FindLatestByBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	return r.findOneForUpdate(ctx, sq.Eq{"booking_id": bookingID}, "created_at DESC")
}

func (r *PaymentRepository) findOneForUpdate(ctx context.Context, where sq.Eq, orderBy string) (*payment.Payment, error) {
	builder := qb.Select(paymentColumns...).
		From("payments").
		Where(where)
	if orderBy != "" {
		builder = builder.OrderBy(orderBy).Limit(1)
	}

	query, args, err := builder.Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build payment select", err)
	}

	var (
		id          uuid.UUID
		bookingID   uuid.UUID
		providerRef string
		amountCents int64
		currency    string
		status      string
		paidAt      *time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&id, &bookingID, &providerRef, &amountCents, &currency,
		&status, &paidAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}

	refunds, err := r.loadRefunds(ctx, id)
	if err != nil {
		return nil, err
	}

	return payment.ReconstructPayment(
		id, bookingID, providerRef, amountCents, currency,
		payment.Status(status), paidAt, refunds, createdAt, updatedAt,
	), nil
}

func (r *PaymentRepository) loadRefunds(ctx context.Context, paymentID uuid.UUID) ([]payment.Refund, error) {
	query, args, err := qb.Select("provider_ref", "amount_cents", "reason", "created_at").
		From("payment_refunds").
		Where(sq.Eq{"payment_id": paymentID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build refund select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load payment refunds", err)
	}
	defer rows.Close()

	var refunds []payment.Refund
	for rows.Next() {
		var rf payment.Refund
		if err := rows.Scan(&rf.ProviderRef, &rf.AmountCents, &rf.Reason, &rf.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment refund", err)
		}
		refunds = append(refunds, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate payment refunds", err)
	}

	return refunds, nil
}

func (r *PaymentRepository) UpdateState(ctx context.Context, p *payment.Payment) error {
	query, args, err := qb.Update("payments").
		Set("status", string(p.Status())).
		Set("paid_at", p.PaidAt()).
		Set("updated_at", p.UpdatedAt()).
		Where(sq.Eq{"id": p.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build payment update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment state", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
	}

	return nil
}

func (r *PaymentRepository) AddRefund(ctx context.Context, paymentID uuid.UUID, rf payment.Refund) error {
	query, args, err := qb.Insert("payment_refunds").
		Columns("payment_id", "provider_ref", "amount_cents", "reason", "created_at").
		Values(paymentID, rf.ProviderRef, rf.AmountCents, rf.Reason, rf.CreatedAt).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build refund insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to add payment refund", err)
	}

	return nil
}

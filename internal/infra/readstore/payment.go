package readstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/queries"
)

type PaymentReadStore struct {
	db db.DBTX
}

func NewPaymentReadStore(dbtx db.DBTX) *PaymentReadStore {
	return &PaymentReadStore{db: dbtx}
}

var _ queries.PaymentReadStore = (*PaymentReadStore)(nil)

func (s *PaymentReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.PaymentView, error) {
	views, err := s.findViews(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
	}
	return views[0], nil
}

func (s *PaymentReadStore) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*queries.PaymentView, error) {
	return s.findViews(ctx, sq.Eq{"booking_id": bookingID})
}

func (s *PaymentReadStore) findViews(ctx context.Context, where sq.Eq) ([]*queries.PaymentView, error) {
	query, args, err := qb.Select(
		"id", "booking_id", "provider_ref", "amount_cents", "currency",
		"status", "paid_at", "created_at", "updated_at",
	).
		From("payments").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build payment view select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load payment views", err)
	}
	defer rows.Close()

	var views []*queries.PaymentView
	for rows.Next() {
		var v queries.PaymentView
		err := rows.Scan(
			&v.ID, &v.BookingID, &v.ProviderRef, &v.AmountCents, &v.Currency,
			&v.Status, &v.PaidAt, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment view", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate payment views", err)
	}

	for _, v := range views {
		refunds, err := s.loadRefunds(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		v.Refunds = refunds
		for _, rf := range refunds {
			v.RefundedCents += rf.AmountCents
		}
	}

	return views, nil
}

func (s *PaymentReadStore) loadRefunds(ctx context.Context, paymentID uuid.UUID) ([]queries.RefundView, error) {
	query, args, err := qb.Select("provider_ref", "amount_cents", "reason", "created_at").
		From("payment_refunds").
		Where(sq.Eq{"payment_id": paymentID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build refund view select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load refund views", err)
	}
	defer rows.Close()

	var refunds []queries.RefundView
	for rows.Next() {
		var rf queries.RefundView
		if err := rows.Scan(&rf.ProviderRef, &rf.AmountCents, &rf.Reason, &rf.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan refund view", err)
		}
		refunds = append(refunds, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate refund views", err)
	}

	return refunds, nil
}

var paymentListColumns = []string{
	"id", "booking_id", "amount_cents", "currency", "status", "created_at",
}

func (s *PaymentReadStore) FindFirstPage(ctx context.Context, limit int32) ([]*queries.PaymentListItem, error) {
	builder := qb.Select(paymentListColumns...).
		From("payments").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	return s.queryList(ctx, builder)
}

func (s *PaymentReadStore) FindKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.PaymentListItem, error) {
	builder := qb.Select(paymentListColumns...).
		From("payments").
		Where(sq.Expr("(created_at, id) < (?, ?)", lastCreatedAt, lastID)).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	return s.queryList(ctx, builder)
}

func (s *PaymentReadStore) queryList(ctx context.Context, builder sq.SelectBuilder) ([]*queries.PaymentListItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build payment list select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list payments", err)
	}
	defer rows.Close()

	var items []*queries.PaymentListItem
	for rows.Next() {
		var item queries.PaymentListItem
		err := rows.Scan(&item.ID, &item.BookingID, &item.AmountCents, &item.Currency, &item.Status, &item.CreatedAt)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment list item", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate payment list", err)
	}

	return items, nil
}

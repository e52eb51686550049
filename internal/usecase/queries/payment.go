package queries

import (
	"context"
	"time"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrPaymentNotFound = errs.New("payment not found")

type PaymentReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentView, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*PaymentView, error)
	FindFirstPage(ctx context.Context, limit int32) ([]*PaymentListItem, error)
	FindKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*PaymentListItem, error)
}

type PaymentQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentView, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*PaymentView, error)
	// List is the staff payment history, newest first.
	List(ctx context.Context, cursor *Cursor, limit int) ([]*PaymentListItem, *Cursor, error)
}

type paymentQueriesImpl struct {
	store PaymentReadStore
}

func NewPaymentQueries(store PaymentReadStore) PaymentQueries {
	return &paymentQueriesImpl{store: store}
}

func (q *paymentQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*PaymentView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *paymentQueriesImpl) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*PaymentView, error) {
	return q.store.FindByBookingID(ctx, bookingID)
}

func (q *paymentQueriesImpl) List(ctx context.Context, cursor *Cursor, limit int) ([]*PaymentListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var rows []*PaymentListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.FindFirstPage(ctx, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.store.FindKeyset(ctx, lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

package queries

import (
	"context"
	"strings"
	"time"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrBookingAccess   = errs.New("booking access denied")
)

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindFirstPage(ctx context.Context, filters BookingFilters, limit int32) ([]*BookingListItem, error)
	FindKeyset(ctx context.Context, filters BookingFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindByCustomerEmail(ctx context.Context, email string, limit int32) ([]*BookingListItem, error)
}

type BookingQueries interface {
	// GetByID is the staff view: no ownership check.
	GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	// GetByIDForCustomer serves the public lookup: the caller must present
	// the email the booking was made with. A wrong email on an existing
	// booking is an access error, not a missing booking.
	GetByIDForCustomer(ctx context.Context, id uuid.UUID, email string) (*BookingView, error)
	List(ctx context.Context, filters BookingFilters, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	ListByCustomerEmail(ctx context.Context, email string, limit int) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *bookingQueriesImpl) GetByIDForCustomer(ctx context.Context, id uuid.UUID, email string) (*BookingView, error) {
	view, err := q.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(view.CustomerEmail, strings.TrimSpace(email)) {
		return nil, ErrBookingAccess
	}
	return view, nil
}

func (q *bookingQueriesImpl) List(ctx context.Context, filters BookingFilters, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var rows []*BookingListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.FindFirstPage(ctx, filters, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.store.FindKeyset(ctx, filters, lastCreatedAt, lastID, int32(limit+1))
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

func (q *bookingQueriesImpl) ListByCustomerEmail(ctx context.Context, email string, limit int) ([]*BookingListItem, error) {
	limit = ValidateLimit(limit)
	return q.store.FindByCustomerEmail(ctx, strings.ToLower(strings.TrimSpace(email)), int32(limit))
}

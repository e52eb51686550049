package queries

import (
	"context"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrStaffNotFound = errs.New("staff member not found")

type StaffReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StaffView, error)
	FindByEmail(ctx context.Context, email string) (*StaffView, string, error)
}

type StaffQueries interface {
	GetCurrentStaff(ctx context.Context, staffID uuid.UUID) (*StaffView, error)
}

type staffQueriesImpl struct {
	store StaffReadStore
}

func NewStaffQueries(store StaffReadStore) StaffQueries {
	return &staffQueriesImpl{store: store}
}

func (q *staffQueriesImpl) GetCurrentStaff(ctx context.Context, staffID uuid.UUID) (*StaffView, error) {
	view, err := q.store.FindByID(ctx, staffID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return view, nil
}

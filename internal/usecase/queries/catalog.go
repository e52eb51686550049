package queries

import (
	"context"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrServiceNotFound = errs.New("service not found")

type ServiceFilters struct {
	Category   *string
	ActiveOnly bool
}

type ServiceReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceView, error)
	FindAll(ctx context.Context, filters ServiceFilters) ([]*ServiceView, error)
}

type CatalogQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceView, error)
	// List returns the catalog grouped the way the booking page renders it:
	// ordered by category, then name.
	List(ctx context.Context, filters ServiceFilters) ([]*ServiceView, error)
}

type catalogQueriesImpl struct {
	store ServiceReadStore
}

func NewCatalogQueries(store ServiceReadStore) CatalogQueries {
	return &catalogQueriesImpl{store: store}
}

func (q *catalogQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ServiceView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *catalogQueriesImpl) List(ctx context.Context, filters ServiceFilters) ([]*ServiceView, error) {
	return q.store.FindAll(ctx, filters)
}

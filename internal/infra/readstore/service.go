package readstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"
)

type ServiceReadStore struct {
	db db.DBTX
}

func NewServiceReadStore(dbtx db.DBTX) *ServiceReadStore {
	return &ServiceReadStore{db: dbtx}
}

var _ queries.ServiceReadStore = (*ServiceReadStore)(nil)

var serviceColumns = []string{
	"id", "name", "description", "category",
	"price_cents", "duration_minutes", "active", "created_at", "updated_at",
}

func (s *ServiceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ServiceView, error) {
	query, args, err := qb.Select(serviceColumns...).
		From("services").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service view select", err)
	}

	var v queries.ServiceView
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&v.ID, &v.Name, &v.Description, &v.Category,
		&v.PriceCents, &v.DurationMinutes, &v.Active, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find service view", err)
	}

	return &v, nil
}

func (s *ServiceReadStore) FindAll(ctx context.Context, filters queries.ServiceFilters) ([]*queries.ServiceView, error) {
	builder := qb.Select(serviceColumns...).
		From("services").
		OrderBy("category", "name")

	if filters.Category != nil {
		builder = builder.Where(sq.Eq{"category": *filters.Category})
	}
	if filters.ActiveOnly {
		builder = builder.Where(sq.Eq{"active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service list select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list services", err)
	}
	defer rows.Close()

	var views []*queries.ServiceView
	for rows.Next() {
		var v queries.ServiceView
		err := rows.Scan(
			&v.ID, &v.Name, &v.Description, &v.Category,
			&v.PriceCents, &v.DurationMinutes, &v.Active, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan service view", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate services", err)
	}

	return views, nil
}

func (s *ServiceReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.ServiceSnapshot, error) {
	query, args, err := qb.Select("id", "name", "category", "price_cents", "duration_minutes", "active").
		From("services").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service snapshot select", err)
	}

	var snap shared.ServiceSnapshot
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&snap.ID, &snap.Name, &snap.Category, &snap.PriceCents, &snap.DurationMinutes, &snap.Active,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find service snapshot", err)
	}

	return &snap, nil
}

package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/domain/catalog"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/shared"
)

type ServiceRepository struct {
	db db.DBTX
}

func NewServiceRepository(dbtx db.DBTX) *ServiceRepository {
	return &ServiceRepository{db: dbtx}
}

var _ shared.ServiceRepository = (*ServiceRepository)(nil)

func (r *ServiceRepository) Create(ctx context.Context, s *catalog.Service) error {
	query, args, err := qb.Insert("services").
		Columns("id", "name", "description", "category", "price_cents", "duration_minutes", "active", "created_at", "updated_at").
		Values(
			s.ID(), s.Name(), s.Description(), string(s.Category()),
			s.PriceCents(), s.DurationMinutes(), s.IsActive(),
			s.CreatedAt(), s.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build service insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create service", err)
	}

	return nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *catalog.Service) error {
	query, args, err := qb.Update("services").
		Set("name", s.Name()).
		Set("description", s.Description()).
		Set("category", string(s.Category())).
		Set("price_cents", s.PriceCents()).
		Set("duration_minutes", s.DurationMinutes()).
		Set("active", s.IsActive()).
		Set("updated_at", s.UpdatedAt()).
		Where(sq.Eq{"id": s.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build service update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update service", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("service not found", nil, infra.KindNotFound)
	}

	return nil
}

func (r *ServiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	query, args, err := qb.Select("id", "name", "description", "category", "price_cents", "duration_minutes", "active", "created_at", "updated_at").
		From("services").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service select", err)
	}

	var (
		serviceID       uuid.UUID
		name            string
		description     string
		category        string
		priceCents      int64
		durationMinutes int
		active          bool
		createdAt       time.Time
		updatedAt       time.Time
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&serviceID, &name, &description, &category,
		&priceCents, &durationMinutes, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find service by ID", err)
	}

	return catalog.ReconstructService(
		serviceID, name, description, catalog.Category(category),
		priceCents, durationMinutes, active, createdAt, updatedAt,
	), nil
}

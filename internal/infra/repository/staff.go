package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/shared"
)

type StaffRepository struct {
	db db.DBTX
}

func NewStaffRepository(dbtx db.DBTX) *StaffRepository {
	return &StaffRepository{db: dbtx}
}

var _ shared.StaffRepository = (*StaffRepository)(nil)

func (r *StaffRepository) UpdateLastLogin(ctx context.Context, staffID uuid.UUID) error {
	query, args, err := qb.Update("staff_users").
		Set("last_login_at", sq.Expr("now()")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": staffID}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build last login update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update staff last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("staff user not found", nil, infra.KindNotFound)
	}

	return nil
}

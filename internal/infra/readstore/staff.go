package readstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/queries"
)

type StaffReadStore struct {
	db db.DBTX
}

func NewStaffReadStore(dbtx db.DBTX) *StaffReadStore {
	return &StaffReadStore{db: dbtx}
}

var _ queries.StaffReadStore = (*StaffReadStore)(nil)

func (s *StaffReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.StaffView, error) {
	query, args, err := qb.Select("id", "email", "role", "last_login_at").
		From("staff_users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build staff select", err)
	}

	var v queries.StaffView
	err = s.db.QueryRow(ctx, query, args...).Scan(&v.ID, &v.Email, &v.Role, &v.LastLoginAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find staff by ID", err)
	}

	return &v, nil
}

// FindByEmail also returns the password hash for credential verification.
func (s *StaffReadStore) FindByEmail(ctx context.Context, email string) (*queries.StaffView, string, error) {
	query, args, err := qb.Select("id", "email", "role", "last_login_at", "password_hash").
		From("staff_users").
		Where(sq.Expr("lower(email) = lower(?)", email)).
		ToSql()
	if err != nil {
		return nil, "", infra.WrapRepoErr("failed to build staff select", err)
	}

	var (
		v    queries.StaffView
		hash string
	)
	err = s.db.QueryRow(ctx, query, args...).Scan(&v.ID, &v.Email, &v.Role, &v.LastLoginAt, &hash)
	if err != nil {
		return nil, "", infra.WrapRepoErr("failed to find staff by email", err)
	}

	return &v, hash, nil
}

package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/shared"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

var _ shared.IdempotencyRepository = (*IdempotencyRepository)(nil)

// TryInsert claims (key, scope) with a plain insert. ON CONFLICT DO NOTHING
// keeps the first writer as the winner; the caller inspects the existing row
// when the claim is lost.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key uuid.UUID, scope, requestHash string, expiresAt time.Time) (bool, error) {
	query, args, err := qb.Insert("idempotency_keys").
		Columns("key", "scope", "status", "request_hash", "expires_at").
		Values(key, scope, shared.IdempotencyStatusProcessing, requestHash, expiresAt).
		Suffix("ON CONFLICT (key, scope) DO NOTHING").
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build idempotency insert", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Find(ctx context.Context, key uuid.UUID, scope string) (*shared.IdempotencyRecord, error) {
	query, args, err := qb.Select("key", "scope", "status", "request_hash", "result_id", "expires_at").
		From("idempotency_keys").
		Where(sq.Eq{"key": key, "scope": scope}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build idempotency select", err)
	}

	var rec shared.IdempotencyRecord
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&rec.Key, &rec.Scope, &rec.Status, &rec.RequestHash, &rec.ResultID, &rec.ExpiresAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find idempotency key", err)
	}

	return &rec, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key uuid.UUID, scope string, resultID uuid.UUID) error {
	query, args, err := qb.Update("idempotency_keys").
		Set("status", shared.IdempotencyStatusCompleted).
		Set("result_id", resultID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"key": key, "scope": scope}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build idempotency update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}

	return nil
}

// ClaimExpired re-arms a stale processing row for a fresh attempt. The
// expires_at guard makes the claim race-safe: only one caller wins.
func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, key uuid.UUID, scope, requestHash string, expiresAt time.Time) (int64, error) {
	query, args, err := qb.Update("idempotency_keys").
		Set("status", shared.IdempotencyStatusProcessing).
		Set("request_hash", requestHash).
		Set("result_id", nil).
		Set("expires_at", expiresAt).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"key": key, "scope": scope}).
		Where(sq.Expr("expires_at < now()")).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build idempotency claim", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}

	return tag.RowsAffected(), nil
}

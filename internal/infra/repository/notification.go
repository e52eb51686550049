package repository

import (
	"context"
	"time"

	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/shared"
)

// NotificationRepository enqueues outbox jobs inside the caller's
// transaction so a job is only visible once the business change commits.
type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

var _ shared.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	query, args, err := qb.Insert("notification_jobs").
		Columns("kind", "topic", "payload", "run_at").
		Values(kind, topic, payload, runAt).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build notification insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}

	return nil
}

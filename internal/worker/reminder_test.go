//go:build unit

package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/schedule"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/usecase/shared"
	"salon-booking-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTx struct {
	bookings  *stubBookingRepo
	jobs      *stubNotificationRepo
	confirmed []uuid.UUID
}

func (t *stubTx) Bookings() shared.BookingRepository           { return t.bookings }
func (t *stubTx) Payments() shared.PaymentRepository           { return nil }
func (t *stubTx) Services() shared.ServiceRepository           { return nil }
func (t *stubTx) Staff() shared.StaffRepository                { return nil }
func (t *stubTx) Idempotency() shared.IdempotencyRepository    { return nil }
func (t *stubTx) Notifications() shared.NotificationRepository { return t.jobs }
func (t *stubTx) Reads() shared.CommandReads                   { return t }
func (t *stubTx) DB() db.DBTX                                  { return nil }

func (t *stubTx) ServiceByID(_ context.Context, _ uuid.UUID) (*shared.ServiceSnapshot, error) {
	return nil, errors.New("not implemented")
}

func (t *stubTx) BookingByID(_ context.Context, _ uuid.UUID) (*shared.BookingSnapshot, error) {
	return nil, errors.New("not implemented")
}

func (t *stubTx) ActiveIntervalsOn(_ context.Context, _ time.Time) ([]schedule.Interval, error) {
	return nil, nil
}

func (t *stubTx) ConfirmedStartingBetween(_ context.Context, _, _ time.Time) ([]uuid.UUID, error) {
	return t.confirmed, nil
}

type stubUoW struct{ tx *stubTx }

func (u *stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *stubUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *stubUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *stubUoW) CommandReads() shared.CommandReads { return u.tx }

type stubBookingRepo struct {
	store     map[uuid.UUID]*booking.Booking
	reminders []booking.ReminderRecord
}

func (r *stubBookingRepo) Create(_ context.Context, _ *booking.Booking, _ time.Time) (uuid.UUID, error) {
	return uuid.Nil, errors.New("not implemented")
}

func (r *stubBookingRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.store[id]
	if !ok {
		return nil, errors.New("missing booking")
	}
	return b, nil
}

func (r *stubBookingRepo) UpdateState(_ context.Context, _ *booking.Booking) error { return nil }

func (r *stubBookingRepo) AppendEvent(_ context.Context, _ uuid.UUID, _ booking.Event) error {
	return nil
}

func (r *stubBookingRepo) AddReminder(_ context.Context, _ uuid.UUID, rec booking.ReminderRecord) error {
	r.reminders = append(r.reminders, rec)
	return nil
}

func (r *stubBookingRepo) AttachReview(_ context.Context, _ uuid.UUID, _ booking.Review) error {
	return nil
}

func (r *stubBookingRepo) ActiveIntervalsOnForUpdate(_ context.Context, _ time.Time) ([]schedule.Interval, error) {
	return nil, nil
}

type stubNotificationRepo struct {
	topics []string
}

func (r *stubNotificationRepo) CreateJob(_ context.Context, _, topic string, _ []byte, _ time.Time) error {
	r.topics = append(r.topics, topic)
	return nil
}

func confirmedBooking(t *testing.T) *booking.Booking {
	t.Helper()
	b, err := builder.NewBookingBuilder().BuildDomain()
	require.NoError(t, err)
	_, _, err = b.MarkPaid(uuid.New(), "stripe", b.CreatedAt())
	require.NoError(t, err)
	return b
}

func newTestWorker(uow *stubUoW, mock *clock.MockClock, t *testing.T) *ReminderWorker {
	t.Helper()
	policy, err := shared.NewSalonPolicy(config.NewTestConfig().Salon)
	require.NoError(t, err)
	return &ReminderWorker{
		uow:    uow,
		policy: policy,
		clock:  mock,
		cfg:    config.ReminderConfig{Enabled: true, PollInterval: time.Minute},
		logger: slog.Default(),
	}
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	setup := func(t *testing.T) (*stubUoW, *booking.Booking) {
		b := confirmedBooking(t)
		tx := &stubTx{
			bookings:  &stubBookingRepo{store: map[uuid.UUID]*booking.Booking{b.ID(): b}},
			jobs:      &stubNotificationRepo{},
			confirmed: []uuid.UUID{b.ID()},
		}
		return &stubUoW{tx: tx}, b
	}

	t.Run("inside the 24h window sends one reminder", func(t *testing.T) {
		uow, b := setup(t)
		// Appointment starts 2026-03-10 10:00; 23.5h earlier is inside (23h, 24h].
		mock := clock.NewMockClock(time.Date(2026, 3, 9, 10, 30, 0, 0, loc))
		w := newTestWorker(uow, mock, t)

		w.runOnce(ctx)
		require.Len(t, uow.tx.bookings.reminders, 1)
		assert.Equal(t, booking.Reminder24h, uow.tx.bookings.reminders[0].Kind)
		assert.Equal(t, []string{"booking_reminder_24h"}, uow.tx.jobs.topics)
		assert.Len(t, b.Reminders(), 1)
	})

	t.Run("rerun in the same window is a no-op", func(t *testing.T) {
		uow, _ := setup(t)
		mock := clock.NewMockClock(time.Date(2026, 3, 9, 10, 30, 0, 0, loc))
		w := newTestWorker(uow, mock, t)

		w.runOnce(ctx)
		w.runOnce(ctx)
		assert.Len(t, uow.tx.bookings.reminders, 1)
		assert.Len(t, uow.tx.jobs.topics, 1)
	})

	t.Run("2h window sends the short-notice kind", func(t *testing.T) {
		uow, _ := setup(t)
		mock := clock.NewMockClock(time.Date(2026, 3, 10, 8, 15, 0, 0, loc))
		w := newTestWorker(uow, mock, t)

		w.runOnce(ctx)
		require.Len(t, uow.tx.bookings.reminders, 1)
		assert.Equal(t, booking.Reminder2h, uow.tx.bookings.reminders[0].Kind)
	})

	t.Run("too early for any window", func(t *testing.T) {
		uow, _ := setup(t)
		mock := clock.NewMockClock(time.Date(2026, 3, 8, 10, 0, 0, 0, loc))
		w := newTestWorker(uow, mock, t)

		w.runOnce(ctx)
		assert.Empty(t, uow.tx.bookings.reminders)
	})

	t.Run("pending bookings are skipped", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		tx := &stubTx{
			bookings:  &stubBookingRepo{store: map[uuid.UUID]*booking.Booking{b.ID(): b}},
			jobs:      &stubNotificationRepo{},
			confirmed: []uuid.UUID{b.ID()},
		}
		uow := &stubUoW{tx: tx}
		mock := clock.NewMockClock(time.Date(2026, 3, 9, 10, 30, 0, 0, loc))
		w := newTestWorker(uow, mock, t)

		w.runOnce(ctx)
		assert.Empty(t, tx.bookings.reminders)
	})
}

package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/schedule"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/shared"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

var _ shared.BookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking, startsAt time.Time) (uuid.UUID, error) {
	appt := b.Appointment()
	cust := b.Customer()

	query, args, err := qb.Insert("bookings").
		Columns(
			"id", "service_id", "service_name",
			"customer_first_name", "customer_last_name", "customer_email", "customer_phone",
			"date", "start_min", "duration_min", "starts_at",
			"amount_cents", "status", "payment_status",
			"notes", "source", "first_time",
			"created_at", "updated_at",
		).
		Values(
			b.ID(), b.ServiceID(), b.ServiceName(),
			cust.FirstName(), cust.LastName(), cust.Email(), cust.Phone(),
			appt.Date(), appt.Start().Minutes(), appt.DurationMinutes(), startsAt,
			b.AmountCents(), string(b.Status()), string(b.PaymentStatus()),
			b.Notes(), string(b.Source()), b.IsFirstTime(),
			b.CreatedAt(), b.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to build booking insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create booking", err)
	}

	return b.ID(), nil
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query, args, err := qb.Select(
		"id", "service_id", "service_name",
		"customer_first_name", "customer_last_name", "customer_email", "customer_phone",
		"date", "start_min", "duration_min",
		"amount_cents", "status", "payment_status", "payment_id",
		"notes", "source", "first_time",
		"cancellation_reason", "cancelled_at",
		"review_rating", "review_comment", "review_submitted_at",
		"created_at", "updated_at",
	).
		From("bookings").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking select", err)
	}

	var (
		row struct {
			id          uuid.UUID
			serviceID   uuid.UUID
			serviceName string
			firstName   string
			lastName    string
			email       string
			phone       string
			date        time.Time
			startMin    int
			durationMin int
			amountCents int64
			status      string
			payStatus   string
			paymentID   *uuid.UUID
			notes       string
			source      string
			firstTime   bool
			cancelRsn   *string
			cancelledAt *time.Time
			rating      *int
			comment     *string
			submittedAt *time.Time
			createdAt   time.Time
			updatedAt   time.Time
		}
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&row.id, &row.serviceID, &row.serviceName,
		&row.firstName, &row.lastName, &row.email, &row.phone,
		&row.date, &row.startMin, &row.durationMin,
		&row.amountCents, &row.status, &row.payStatus, &row.paymentID,
		&row.notes, &row.source, &row.firstTime,
		&row.cancelRsn, &row.cancelledAt,
		&row.rating, &row.comment, &row.submittedAt,
		&row.createdAt, &row.updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}

	start, err := schedule.TimeOfDayFromMinutes(row.startMin)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt booking start minutes", err, infra.KindDBFailure)
	}
	appt, err := booking.NewAppointment(row.date, start, row.durationMin)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt booking appointment", err, infra.KindDBFailure)
	}

	var cancellation *booking.Cancellation
	if row.cancelledAt != nil {
		reason := ""
		if row.cancelRsn != nil {
			reason = *row.cancelRsn
		}
		cancellation = &booking.Cancellation{Reason: reason, CancelledAt: *row.cancelledAt}
	}

	var review *booking.Review
	if row.rating != nil && row.submittedAt != nil {
		comment := ""
		if row.comment != nil {
			comment = *row.comment
		}
		rev, err := booking.NewReview(*row.rating, comment, *row.submittedAt)
		if err != nil {
			return nil, infra.WrapRepoErr("corrupt booking review", err, infra.KindDBFailure)
		}
		review = &rev
	}

	reminders, err := r.loadReminders(ctx, row.id)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		row.id,
		booking.ReconstructCustomer(row.firstName, row.lastName, row.email, row.phone),
		row.serviceID,
		row.serviceName,
		appt,
		row.amountCents,
		booking.Status(row.status),
		booking.PaymentStatus(row.payStatus),
		row.paymentID,
		row.notes,
		booking.Source(row.source),
		row.firstTime,
		cancellation,
		reminders,
		review,
		row.createdAt, row.updatedAt,
	), nil
}

func (r *BookingRepository) loadReminders(ctx context.Context, bookingID uuid.UUID) ([]booking.ReminderRecord, error) {
	query, args, err := qb.Select("kind", "method", "sent_at").
		From("booking_reminders").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("sent_at").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reminder select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load booking reminders", err)
	}
	defer rows.Close()

	var reminders []booking.ReminderRecord
	for rows.Next() {
		var (
			kind   string
			method string
			sentAt time.Time
		)
		if err := rows.Scan(&kind, &method, &sentAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking reminder", err)
		}
		reminders = append(reminders, booking.ReminderRecord{
			Kind:   booking.ReminderKind(kind),
			Method: method,
			SentAt: sentAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking reminders", err)
	}

	return reminders, nil
}

func (r *BookingRepository) UpdateState(ctx context.Context, b *booking.Booking) error {
	update := qb.Update("bookings").
		Set("status", string(b.Status())).
		Set("payment_status", string(b.PaymentStatus())).
		Set("payment_id", b.PaymentID()).
		Set("updated_at", b.UpdatedAt()).
		Where(sq.Eq{"id": b.ID()})

	if c := b.Cancellation(); c != nil {
		update = update.
			Set("cancellation_reason", c.Reason).
			Set("cancelled_at", c.CancelledAt)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build booking update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking state", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}

	return nil
}

func (r *BookingRepository) AppendEvent(ctx context.Context, bookingID uuid.UUID, ev booking.Event) error {
	query, args, err := qb.Insert("booking_events").
		Columns("booking_id", "status", "actor", "occurred_at").
		Values(bookingID, string(ev.Status), ev.Actor, ev.OccurredAt).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build event insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to append booking event", err)
	}

	return nil
}

func (r *BookingRepository) AddReminder(ctx context.Context, bookingID uuid.UUID, rec booking.ReminderRecord) error {
	query, args, err := qb.Insert("booking_reminders").
		Columns("booking_id", "kind", "method", "sent_at").
		Values(bookingID, string(rec.Kind), rec.Method, rec.SentAt).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build reminder insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to add booking reminder", err)
	}

	return nil
}

func (r *BookingRepository) AttachReview(ctx context.Context, bookingID uuid.UUID, rev booking.Review) error {
	query, args, err := qb.Update("bookings").
		Set("review_rating", rev.Rating()).
		Set("review_comment", rev.Comment()).
		Set("review_submitted_at", rev.SubmittedAt()).
		Set("updated_at", rev.SubmittedAt()).
		Where(sq.Eq{"id": bookingID}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build review update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to attach review", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}

	return nil
}

// ActiveIntervalsOnForUpdate serializes concurrent creates for one date.
// The exclusion constraint rejects raw overlap, but the buffer between
// appointments is only visible here, so the per-date advisory lock makes
// the check-then-insert sequence atomic across transactions.
func (r *BookingRepository) ActiveIntervalsOnForUpdate(ctx context.Context, date time.Time) ([]schedule.Interval, error) {
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1::text))", date.Format("2006-01-02")); err != nil {
		return nil, infra.WrapRepoErr("failed to acquire date lock", err)
	}

	query, args, err := qb.Select("start_min", "duration_min").
		From("bookings").
		Where(sq.Eq{"date": date}).
		Where(sq.Eq{"status": []string{string(booking.StatusPending), string(booking.StatusConfirmed)}}).
		OrderBy("start_min").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build interval select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load active intervals", err)
	}
	defer rows.Close()

	var intervals []schedule.Interval
	for rows.Next() {
		var startMin, durationMin int
		if err := rows.Scan(&startMin, &durationMin); err != nil {
			return nil, infra.WrapRepoErr("failed to scan interval", err)
		}
		start, err := schedule.TimeOfDayFromMinutes(startMin)
		if err != nil {
			return nil, infra.WrapRepoErr("corrupt interval start", err, infra.KindDBFailure)
		}
		iv, err := schedule.NewInterval(start, durationMin)
		if err != nil {
			return nil, infra.WrapRepoErr("corrupt interval duration", err, infra.KindDBFailure)
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate active intervals", err)
	}

	return intervals, nil
}

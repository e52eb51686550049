// Package readstore implements the query-side persistence over PostgreSQL.
// Read stores return view DTOs directly; they never build domain aggregates.
package readstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"salon-booking-api/internal/domain/schedule"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const dateFormat = "2006-01-02"

func minutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

var _ queries.BookingReadStore = (*BookingReadStore)(nil)
var _ queries.ScheduleReadStore = (*BookingReadStore)(nil)

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
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
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking view select", err)
	}

	var (
		v           queries.BookingView
		date        time.Time
		startMin    int
		rating      *int
		comment     *string
		submittedAt *time.Time
	)
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&v.ID, &v.ServiceID, &v.ServiceName,
		&v.CustomerFirstName, &v.CustomerLastName, &v.CustomerEmail, &v.CustomerPhone,
		&date, &startMin, &v.DurationMinutes,
		&v.AmountCents, &v.Status, &v.PaymentStatus, &v.PaymentID,
		&v.Notes, &v.Source, &v.FirstTime,
		&v.CancellationReason, &v.CancelledAt,
		&rating, &comment, &submittedAt,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}

	v.Date = date.Format(dateFormat)
	v.StartTime = minutesToClock(startMin)
	if rating != nil && submittedAt != nil {
		rv := queries.BookingReviewView{Rating: *rating, SubmittedAt: *submittedAt}
		if comment != nil {
			rv.Comment = *comment
		}
		v.Review = &rv
	}

	events, err := s.loadEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Events = events

	return &v, nil
}

func (s *BookingReadStore) loadEvents(ctx context.Context, bookingID uuid.UUID) ([]queries.BookingEventView, error) {
	query, args, err := qb.Select("status", "actor", "occurred_at").
		From("booking_events").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("occurred_at", "id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build event select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load booking events", err)
	}
	defer rows.Close()

	var events []queries.BookingEventView
	for rows.Next() {
		var ev queries.BookingEventView
		if err := rows.Scan(&ev.Status, &ev.Actor, &ev.OccurredAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking event", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking events", err)
	}

	return events, nil
}

var bookingListColumns = []string{
	"id", "service_name",
	"customer_first_name", "customer_last_name", "customer_email",
	"date", "start_min", "duration_min",
	"status", "payment_status", "amount_cents", "created_at",
}

func (s *BookingReadStore) FindFirstPage(ctx context.Context, filters queries.BookingFilters, limit int32) ([]*queries.BookingListItem, error) {
	builder := s.listBuilder(filters).Limit(uint64(limit))
	return s.queryList(ctx, builder)
}

func (s *BookingReadStore) FindKeyset(ctx context.Context, filters queries.BookingFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	builder := s.listBuilder(filters).
		Where(sq.Expr("(created_at, id) < (?, ?)", lastCreatedAt, lastID)).
		Limit(uint64(limit))
	return s.queryList(ctx, builder)
}

func (s *BookingReadStore) FindByCustomerEmail(ctx context.Context, email string, limit int32) ([]*queries.BookingListItem, error) {
	builder := qb.Select(bookingListColumns...).
		From("bookings").
		Where(sq.Expr("lower(customer_email) = lower(?)", email)).
		OrderBy("starts_at DESC").
		Limit(uint64(limit))
	return s.queryList(ctx, builder)
}

func (s *BookingReadStore) listBuilder(filters queries.BookingFilters) sq.SelectBuilder {
	builder := qb.Select(bookingListColumns...).
		From("bookings").
		OrderBy("created_at DESC", "id DESC")

	if filters.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filters.Status})
	}
	if filters.From != nil {
		builder = builder.Where(sq.GtOrEq{"date": *filters.From})
	}
	if filters.To != nil {
		builder = builder.Where(sq.LtOrEq{"date": *filters.To})
	}
	if filters.Email != nil {
		builder = builder.Where(sq.Expr("lower(customer_email) = lower(?)", *filters.Email))
	}

	return builder
}

func (s *BookingReadStore) queryList(ctx context.Context, builder sq.SelectBuilder) ([]*queries.BookingListItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking list select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var items []*queries.BookingListItem
	for rows.Next() {
		var (
			item      queries.BookingListItem
			firstName string
			lastName  string
			date      time.Time
			startMin  int
		)
		err := rows.Scan(
			&item.ID, &item.ServiceName,
			&firstName, &lastName, &item.CustomerEmail,
			&date, &startMin, &item.DurationMinutes,
			&item.Status, &item.PaymentStatus, &item.AmountCents, &item.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		item.CustomerName = firstName + " " + lastName
		item.Date = date.Format(dateFormat)
		item.StartTime = minutesToClock(startMin)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking list", err)
	}

	return items, nil
}

// ActiveIntervalsOn reads occupied windows without locking; availability is
// advisory and the booking path re-checks under its own lock.
func (s *BookingReadStore) ActiveIntervalsOn(ctx context.Context, date time.Time) ([]schedule.Interval, error) {
	query, args, err := qb.Select("start_min", "duration_min").
		From("bookings").
		Where(sq.Eq{"date": date}).
		Where(sq.Eq{"status": []string{"pending", "confirmed"}}).
		OrderBy("start_min").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build interval select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
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

// ConfirmedIDsStartingBetween feeds the reminder scan: confirmed bookings
// whose absolute start falls inside (from, to].
func (s *BookingReadStore) ConfirmedIDsStartingBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	query, args, err := qb.Select("id").
		From("bookings").
		Where(sq.Eq{"status": "confirmed"}).
		Where(sq.Gt{"starts_at": from}).
		Where(sq.LtOrEq{"starts_at": to}).
		OrderBy("starts_at").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reminder scan select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan confirmed bookings", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate confirmed bookings", err)
	}

	return ids, nil
}

// SnapshotByID is the command-side validation read.
func (s *BookingReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	query, args, err := qb.Select("id", "status", "payment_status", "customer_email", "date", "start_min", "duration_min", "amount_cents").
		From("bookings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking snapshot select", err)
	}

	var snap shared.BookingSnapshot
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&snap.ID, &snap.Status, &snap.PaymentStatus, &snap.CustomerEmail,
		&snap.Date, &snap.StartMinutes, &snap.DurationMinutes, &snap.AmountCents,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking snapshot", err)
	}

	return &snap, nil
}

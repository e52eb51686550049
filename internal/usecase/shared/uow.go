package shared

import (
	"context"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/catalog"
	"salon-booking-api/internal/domain/payment"
	"salon-booking-api/internal/domain/schedule"
	"salon-booking-api/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full read-write transaction with retry on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: validation reads outside an explicit transaction
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Payments() PaymentRepository
	Services() ServiceRepository
	Staff() StaffRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	ServiceByID(ctx context.Context, id uuid.UUID) (*ServiceSnapshot, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	ActiveIntervalsOn(ctx context.Context, date time.Time) ([]schedule.Interval, error)
	ConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking, startsAt time.Time) (uuid.UUID, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	UpdateState(ctx context.Context, b *booking.Booking) error
	AppendEvent(ctx context.Context, bookingID uuid.UUID, ev booking.Event) error
	AddReminder(ctx context.Context, bookingID uuid.UUID, rec booking.ReminderRecord) error
	AttachReview(ctx context.Context, bookingID uuid.UUID, rev booking.Review) error
	// ActiveIntervalsOnForUpdate locks the active bookings of the date so a
	// concurrent insert cannot slip between the conflict check and Create.
	ActiveIntervalsOnForUpdate(ctx context.Context, date time.Time) ([]schedule.Interval, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	FindByProviderRefForUpdate(ctx context.Context, providerRef string) (*payment.Payment, error)
	FindLatestByBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
	UpdateState(ctx context.Context, p *payment.Payment) error
	AddRefund(ctx context.Context, paymentID uuid.UUID, r payment.Refund) error
}

type ServiceRepository interface {
	Create(ctx context.Context, s *catalog.Service) error
	Update(ctx context.Context, s *catalog.Service) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Service, error)
}

type StaffRepository interface {
	UpdateLastLogin(ctx context.Context, staffID uuid.UUID) error
}

type IdempotencyRepository interface {
	// TryInsert claims the key for this request. It reports false when a row
	// for (key, scope) already exists, without error.
	TryInsert(ctx context.Context, key uuid.UUID, scope, requestHash string, expiresAt time.Time) (bool, error)
	Find(ctx context.Context, key uuid.UUID, scope string) (*IdempotencyRecord, error)
	Complete(ctx context.Context, key uuid.UUID, scope string, resultID uuid.UUID) error
	ClaimExpired(ctx context.Context, key uuid.UUID, scope, requestHash string, expiresAt time.Time) (int64, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

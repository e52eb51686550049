package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/schedule"
	reqdto "salon-booking-api/internal/handler/dto/request"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/errs"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrServiceNotFound         = errs.New("service not found")
	ErrServiceUnavailable      = errs.New("service is not bookable")
	ErrInvalidDate             = errs.New("invalid date")
	ErrPastSlot                = errs.New("slot is in the past")
	ErrSlotNotOffered          = errs.New("slot is not offered")
	ErrSlotConflict            = errs.New("slot conflicts with another booking")
	ErrBookingNotFound         = errs.New("booking not found")
	ErrBookingAccess           = errs.New("booking access denied")
	ErrCancellationTooLate     = errs.New("cancellation window has passed")
	ErrBookingFinalized        = errs.New("booking is already finalized")
	ErrIllegalStatusChange     = errs.New("illegal status change")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrIdempotencyKeyReused    = errs.New("idempotency key reused with a different request")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const createBookingScope = "POST /bookings"

// Actor labels recorded on status history events.
const (
	ActorCustomer = "customer"
	ActorSystem   = "system"
)

type CreateBookingResult struct {
	Booking    *queries.BookingView
	IsReplayed bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, req reqdto.CreateBookingRequest, idempotencyKey uuid.UUID) (*CreateBookingResult, error)
	// CancelBooking enforces the email check only when email is non-empty;
	// staff callers pass an empty email and their own actor label.
	CancelBooking(ctx context.Context, id uuid.UUID, email, reason, actor string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status, actor string) error
	SubmitReview(ctx context.Context, id uuid.UUID, email string, rating int, comment string) error
}

type bookingUseCaseImpl struct {
	uow            shared.UnitOfWork
	idempotency    shared.IdempotencyRepository
	bookingQueries queries.BookingQueries
	policy         shared.SalonPolicy
	clock          clock.Clock
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	idempotency shared.IdempotencyRepository,
	bookingQueries queries.BookingQueries,
	policy shared.SalonPolicy,
	clock clock.Clock,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:            uow,
		idempotency:    idempotency,
		bookingQueries: bookingQueries,
		policy:         policy,
		clock:          clock,
	}
}

func (u *bookingUseCaseImpl) CreateBooking(
	ctx context.Context,
	req reqdto.CreateBookingRequest,
	idempotencyKey uuid.UUID,
) (*CreateBookingResult, error) {
	requestHash := calculateRequestHash(req)
	expiresAt := u.clock.Now().Add(24 * time.Hour)

	replayed, err := u.handleIdempotency(ctx, idempotencyKey, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &CreateBookingResult{Booking: replayed, IsReplayed: true}, nil
	}

	view, err := u.createNewBooking(ctx, req, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &CreateBookingResult{Booking: view, IsReplayed: false}, nil
}

func (u *bookingUseCaseImpl) handleIdempotency(
	ctx context.Context,
	key uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.BookingView, error) {
	inserted, err := u.idempotency.TryInsert(ctx, key, createBookingScope, requestHash, expiresAt)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if inserted {
		return nil, nil
	}

	existing, err := u.idempotency.Find(ctx, key, createBookingScope)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	switch existing.Status {
	case shared.IdempotencyStatusCompleted:
		if existing.ResultID == nil {
			return nil, errs.New("completed idempotency record missing result")
		}
		return u.bookingQueries.GetByID(ctx, *existing.ResultID)

	case shared.IdempotencyStatusProcessing:
		if existing.RequestHash != requestHash {
			return nil, ErrIdempotencyKeyReused
		}
		if existing.ExpiresAt.Before(u.clock.Now()) {
			claimed, err := u.idempotency.ClaimExpired(ctx, key, createBookingScope, requestHash, u.clock.Now().Add(24*time.Hour))
			if err != nil {
				return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
			}
			if claimed > 0 {
				return nil, nil
			}
		}
		return nil, ErrIdempotencyInProgress

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (u *bookingUseCaseImpl) createNewBooking(
	ctx context.Context,
	req reqdto.CreateBookingRequest,
	idempotencyKey uuid.UUID,
) (*queries.BookingView, error) {
	svc, err := u.validateService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	date, err := req.ParseDate(u.policy.Location)
	if err != nil {
		return nil, ErrInvalidDate
	}
	start, err := req.ParseStart()
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidDate)
	}

	if err := u.validateSlotOffered(date, start, svc.DurationMinutes); err != nil {
		return nil, err
	}

	customer, err := req.ToCustomer()
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}
	appointment, err := booking.NewAppointment(date, start, svc.DurationMinutes)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	entity, err := booking.NewBooking(
		customer,
		svc.ID,
		svc.Name,
		appointment,
		svc.PriceCents,
		req.Notes,
		booking.Source(req.Source),
		req.FirstTime,
		u.clock.Now(),
	)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	bookingID, err := u.persistBooking(ctx, entity, idempotencyKey)
	if err != nil {
		return nil, err
	}

	return u.bookingQueries.GetByID(ctx, bookingID)
}

func (u *bookingUseCaseImpl) validateService(ctx context.Context, serviceID uuid.UUID) (*shared.ServiceSnapshot, error) {
	svc, err := u.uow.CommandReads().ServiceByID(ctx, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !svc.Active {
		return nil, ErrServiceUnavailable
	}
	return svc, nil
}

// validateSlotOffered rejects anything the availability endpoint would never
// have shown: past starts, closed days and starts off the slot grid.
func (u *bookingUseCaseImpl) validateSlotOffered(date time.Time, start schedule.TimeOfDay, durationMinutes int) error {
	startAt := start.At(date, u.policy.Location)
	if !startAt.After(u.clock.Now()) {
		return ErrPastSlot
	}

	candidates, reason, err := schedule.GenerateSlots(date, u.policy.Hours, u.policy.SlotStepMinutes, durationMinutes)
	if err != nil {
		return errs.Mark(err, ErrDomainValidation)
	}
	if reason != schedule.ReasonOpen {
		return ErrSlotNotOffered
	}
	for _, c := range candidates {
		if c == start {
			return nil
		}
	}
	return ErrSlotNotOffered
}

func (u *bookingUseCaseImpl) persistBooking(ctx context.Context, entity *booking.Booking, idempotencyKey uuid.UUID) (uuid.UUID, error) {
	startsAt := entity.Appointment().StartAt(u.policy.Location)

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := tx.Bookings().ActiveIntervalsOnForUpdate(ctx, entity.Appointment().Date())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !schedule.IsAvailable(entity.Appointment().Interval(), existing, u.policy.BufferMinutes) {
			return ErrSlotConflict
		}

		if _, err := tx.Bookings().Create(ctx, entity, startsAt); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrSlotConflict
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		ev := booking.Event{Status: booking.StatusPending, Actor: ActorCustomer, OccurredAt: u.clock.Now()}
		if err := tx.Bookings().AppendEvent(ctx, entity.ID(), ev); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := u.enqueueNotification(ctx, tx, "booking_created", entity.ID()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := tx.Idempotency().Complete(ctx, idempotencyKey, createBookingScope, entity.ID()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return entity.ID(), nil
}

func (u *bookingUseCaseImpl) CancelBooking(ctx context.Context, id uuid.UUID, email, reason, actor string) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := u.lockBooking(ctx, tx, id, email)
		if err != nil {
			return err
		}

		ev, err := entity.Cancel(reason, actor, u.clock.Now(), u.policy.Location, u.policy.CancellationWindow)
		if err != nil {
			return mapCancellationError(err)
		}

		if err := tx.Bookings().UpdateState(ctx, entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Bookings().AppendEvent(ctx, id, ev); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return u.enqueueNotification(ctx, tx, "booking_cancelled", id)
	})
}

func (u *bookingUseCaseImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status, actor string) error {
	to, err := booking.NewStatus(status)
	if err != nil {
		return errs.Mark(err, ErrDomainValidation)
	}

	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := u.lockBooking(ctx, tx, id, "")
		if err != nil {
			return err
		}

		ev, err := entity.TransitionTo(to, actor, u.clock.Now())
		if err != nil {
			return errs.Mark(err, ErrIllegalStatusChange)
		}

		if err := tx.Bookings().UpdateState(ctx, entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return tx.Bookings().AppendEvent(ctx, id, ev)
	})
}

func (u *bookingUseCaseImpl) SubmitReview(ctx context.Context, id uuid.UUID, email string, rating int, comment string) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := u.lockBooking(ctx, tx, id, email)
		if err != nil {
			return err
		}

		if err := entity.AttachReview(rating, comment, u.clock.Now()); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}
		return tx.Bookings().AttachReview(ctx, id, *entity.Review())
	})
}

func (u *bookingUseCaseImpl) lockBooking(ctx context.Context, tx shared.Tx, id uuid.UUID, email string) (*booking.Booking, error) {
	entity, err := tx.Bookings().FindByIDForUpdate(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if email != "" && !strings.EqualFold(entity.Customer().Email(), strings.TrimSpace(email)) {
		return nil, ErrBookingAccess
	}
	return entity, nil
}

func (u *bookingUseCaseImpl) enqueueNotification(ctx context.Context, tx shared.Tx, topic string, bookingID uuid.UUID) error {
	payload, err := json.Marshal(map[string]any{
		"booking_id": bookingID,
		"type":       topic,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, "email", topic, payload, u.clock.Now())
}

func mapCancellationError(err error) error {
	switch {
	case errors.Is(err, booking.ErrCancellationWindow):
		return errs.Mark(err, ErrCancellationTooLate)
	case errors.Is(err, booking.ErrAlreadyTerminal), errors.Is(err, booking.ErrIllegalTransition):
		return errs.Mark(err, ErrBookingFinalized)
	default:
		return errs.Mark(err, ErrDomainValidation)
	}
}

func calculateRequestHash(req reqdto.CreateBookingRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

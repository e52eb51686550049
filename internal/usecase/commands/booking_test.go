//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/schedule"
	reqdto "salon-booking-api/internal/handler/dto/request"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/usecase/commands"
	"salon-booking-api/internal/usecase/shared"
	"salon-booking-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type BookingCommandsTestSuite struct {
	suite.Suite
	uow      *fakeUoW
	queries  *fakeBookingQueries
	clock    *clock.MockClock
	policy   shared.SalonPolicy
	commands commands.BookingCommands
	svcID    uuid.UUID
}

func (s *BookingCommandsTestSuite) SetupTest() {
	policy, err := shared.NewSalonPolicy(config.NewTestConfig().Salon)
	s.Require().NoError(err)
	s.policy = policy

	s.uow = newFakeUoW()
	s.queries = newFakeBookingQueries()
	s.clock = clock.NewMockClock(time.Date(2026, 3, 2, 12, 0, 0, 0, policy.Location))
	s.commands = commands.NewBookingUseCase(s.uow, s.uow.tx.idempotency, s.queries, policy, s.clock)

	s.svcID = uuid.New()
	s.uow.reads.service = &shared.ServiceSnapshot{
		ID:              s.svcID,
		Name:            "Women's Haircut",
		Category:        "haircut",
		PriceCents:      6500,
		DurationMinutes: 60,
		Active:          true,
	}
}

func TestBookingCommandsSuite(t *testing.T) {
	suite.Run(t, new(BookingCommandsTestSuite))
}

func (s *BookingCommandsTestSuite) validRequest() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		ServiceID: s.svcID,
		Date:      "2026-03-10",
		StartTime: "10:00",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@example.com",
		Phone:     "+1 (555) 123-4567",
		Source:    "website",
	}
}

func (s *BookingCommandsTestSuite) TestCreateBooking() {
	ctx := context.Background()

	s.Run("success: persists booking, history and notification", func() {
		s.SetupTest()
		result, err := s.commands.CreateBooking(ctx, s.validRequest(), uuid.New())

		s.Require().NoError(err)
		s.False(result.IsReplayed)
		s.Len(s.uow.tx.bookings.store, 1)
		s.Require().Len(s.uow.tx.bookings.events, 1)
		s.Equal(booking.StatusPending, s.uow.tx.bookings.events[0].Status)
		s.Require().Len(s.uow.tx.notifications.jobs, 1)
		s.Equal("booking_created", s.uow.tx.notifications.jobs[0].Topic)
	})

	s.Run("success: same key replays the original result without a second insert", func() {
		s.SetupTest()
		key := uuid.New()
		first, err := s.commands.CreateBooking(ctx, s.validRequest(), key)
		s.Require().NoError(err)

		second, err := s.commands.CreateBooking(ctx, s.validRequest(), key)
		s.Require().NoError(err)
		s.True(second.IsReplayed)
		s.Equal(first.Booking.ID, second.Booking.ID)
		s.Equal(1, s.uow.tx.bookings.createCalls)
	})

	s.Run("error: same key with a different body is rejected", func() {
		s.SetupTest()
		key := uuid.New()
		rec := &shared.IdempotencyRecord{
			Key:         key,
			Scope:       "POST /bookings",
			Status:      shared.IdempotencyStatusProcessing,
			RequestHash: "different-hash",
			ExpiresAt:   s.clock.Now().Add(time.Hour),
		}
		s.uow.tx.idempotency.records[idemKey(key, rec.Scope)] = rec

		_, err := s.commands.CreateBooking(ctx, s.validRequest(), key)
		s.ErrorIs(err, commands.ErrIdempotencyKeyReused)
	})

	s.Run("error: in-flight key with the same body reports in progress", func() {
		s.SetupTest()
		key := uuid.New()
		req := s.validRequest()
		// Claim the key but never complete it.
		_, err := s.commands.CreateBooking(ctx, req, key)
		s.Require().NoError(err)
		rec := s.uow.tx.idempotency.records[idemKey(key, "POST /bookings")]
		rec.Status = shared.IdempotencyStatusProcessing
		rec.ResultID = nil

		_, err = s.commands.CreateBooking(ctx, req, key)
		s.ErrorIs(err, commands.ErrIdempotencyInProgress)
	})

	s.Run("error: unknown service", func() {
		s.SetupTest()
		s.uow.reads.serviceErr = notFoundErr()

		_, err := s.commands.CreateBooking(ctx, s.validRequest(), uuid.New())
		s.ErrorIs(err, commands.ErrServiceNotFound)
	})

	s.Run("error: deactivated service", func() {
		s.SetupTest()
		s.uow.reads.service.Active = false

		_, err := s.commands.CreateBooking(ctx, s.validRequest(), uuid.New())
		s.ErrorIs(err, commands.ErrServiceUnavailable)
	})

	s.Run("error: start in the past", func() {
		s.SetupTest()
		req := s.validRequest()
		req.Date = "2026-02-24"

		_, err := s.commands.CreateBooking(ctx, req, uuid.New())
		s.ErrorIs(err, commands.ErrPastSlot)
	})

	s.Run("error: start off the slot grid", func() {
		s.SetupTest()
		req := s.validRequest()
		req.StartTime = "10:15"

		_, err := s.commands.CreateBooking(ctx, req, uuid.New())
		s.ErrorIs(err, commands.ErrSlotNotOffered)
	})

	s.Run("error: closed weekday", func() {
		s.SetupTest()
		req := s.validRequest()
		req.Date = "2026-03-09" // Monday

		_, err := s.commands.CreateBooking(ctx, req, uuid.New())
		s.ErrorIs(err, commands.ErrSlotNotOffered)
	})

	s.Run("error: overlapping booking", func() {
		s.SetupTest()
		start, err := schedule.NewTimeOfDay(10, 30)
		s.Require().NoError(err)
		occupied, err := schedule.NewInterval(start, 60)
		s.Require().NoError(err)
		s.uow.tx.bookings.intervals = []schedule.Interval{occupied}

		_, err = s.commands.CreateBooking(ctx, s.validRequest(), uuid.New())
		s.ErrorIs(err, commands.ErrSlotConflict)
	})

	s.Run("error: gap shorter than the buffer", func() {
		s.SetupTest()
		start, err := schedule.NewTimeOfDay(8, 50)
		s.Require().NoError(err)
		occupied, err := schedule.NewInterval(start, 60) // ends 09:50, 10 min gap
		s.Require().NoError(err)
		s.uow.tx.bookings.intervals = []schedule.Interval{occupied}

		_, err = s.commands.CreateBooking(ctx, s.validRequest(), uuid.New())
		s.ErrorIs(err, commands.ErrSlotConflict)
	})
}

func (s *BookingCommandsTestSuite) seedBooking() *booking.Booking {
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)
	s.uow.tx.bookings.store[b.ID()] = b
	return b
}

func (s *BookingCommandsTestSuite) TestCancelBooking() {
	ctx := context.Background()

	s.Run("success: well before the window", func() {
		s.SetupTest()
		b := s.seedBooking()

		err := s.commands.CancelBooking(ctx, b.ID(), b.Customer().Email(), "schedule change", commands.ActorCustomer)
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, b.Status())
		s.Require().NotNil(b.Cancellation())
		s.Equal("schedule change", b.Cancellation().Reason)
		s.Require().Len(s.uow.tx.notifications.jobs, 1)
		s.Equal("booking_cancelled", s.uow.tx.notifications.jobs[0].Topic)
	})

	s.Run("success: exactly at the window boundary", func() {
		s.SetupTest()
		b := s.seedBooking()
		s.clock.Set(time.Date(2026, 3, 9, 10, 0, 0, 0, s.policy.Location))

		err := s.commands.CancelBooking(ctx, b.ID(), b.Customer().Email(), "", commands.ActorCustomer)
		s.NoError(err)
	})

	s.Run("error: one minute inside the window", func() {
		s.SetupTest()
		b := s.seedBooking()
		s.clock.Set(time.Date(2026, 3, 9, 10, 1, 0, 0, s.policy.Location))

		err := s.commands.CancelBooking(ctx, b.ID(), b.Customer().Email(), "", commands.ActorCustomer)
		s.ErrorIs(err, commands.ErrCancellationTooLate)
		s.Equal(booking.StatusPending, b.Status())
	})

	s.Run("error: wrong email", func() {
		s.SetupTest()
		b := s.seedBooking()

		err := s.commands.CancelBooking(ctx, b.ID(), "someone.else@example.com", "", commands.ActorCustomer)
		s.ErrorIs(err, commands.ErrBookingAccess)
	})

	s.Run("error: unknown booking", func() {
		s.SetupTest()
		err := s.commands.CancelBooking(ctx, uuid.New(), "jane.doe@example.com", "", commands.ActorCustomer)
		s.ErrorIs(err, commands.ErrBookingNotFound)
	})

	s.Run("error: already cancelled", func() {
		s.SetupTest()
		b := s.seedBooking()
		_, err := b.Cancel("", commands.ActorCustomer, s.clock.Now(), s.policy.Location, s.policy.CancellationWindow)
		s.Require().NoError(err)

		err = s.commands.CancelBooking(ctx, b.ID(), b.Customer().Email(), "", commands.ActorCustomer)
		s.ErrorIs(err, commands.ErrBookingFinalized)
	})

	s.Run("success: staff cancel skips the email check", func() {
		s.SetupTest()
		b := s.seedBooking()

		err := s.commands.CancelBooking(ctx, b.ID(), "", "no-show risk", "staff")
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, b.Status())
	})
}

func (s *BookingCommandsTestSuite) TestUpdateStatus() {
	ctx := context.Background()

	s.Run("success: pending to confirmed records the actor", func() {
		s.SetupTest()
		b := s.seedBooking()

		err := s.commands.UpdateStatus(ctx, b.ID(), "confirmed", "staff")
		s.Require().NoError(err)
		s.Equal(booking.StatusConfirmed, b.Status())
		s.Require().Len(s.uow.tx.bookings.events, 1)
		s.Equal("staff", s.uow.tx.bookings.events[0].Actor)
	})

	s.Run("error: unknown status string", func() {
		s.SetupTest()
		b := s.seedBooking()

		err := s.commands.UpdateStatus(ctx, b.ID(), "paused", "staff")
		s.ErrorIs(err, commands.ErrDomainValidation)
	})

	s.Run("error: completed before confirmed", func() {
		s.SetupTest()
		b := s.seedBooking()

		err := s.commands.UpdateStatus(ctx, b.ID(), "completed", "staff")
		s.ErrorIs(err, commands.ErrIllegalStatusChange)
		s.Equal(booking.StatusPending, b.Status())
	})
}

func (s *BookingCommandsTestSuite) TestSubmitReview() {
	ctx := context.Background()

	completed := func(b *booking.Booking) {
		_, err := b.TransitionTo(booking.StatusConfirmed, "staff", s.clock.Now())
		s.Require().NoError(err)
		_, err = b.TransitionTo(booking.StatusCompleted, "staff", s.clock.Now())
		s.Require().NoError(err)
	}

	s.Run("success: completed booking accepts one review", func() {
		s.SetupTest()
		b := s.seedBooking()
		completed(b)

		err := s.commands.SubmitReview(ctx, b.ID(), b.Customer().Email(), 5, "great cut")
		s.Require().NoError(err)
		s.Require().NotNil(b.Review())
		s.Equal(5, b.Review().Rating())
	})

	s.Run("error: second review is rejected", func() {
		s.SetupTest()
		b := s.seedBooking()
		completed(b)
		s.Require().NoError(s.commands.SubmitReview(ctx, b.ID(), b.Customer().Email(), 5, ""))

		err := s.commands.SubmitReview(ctx, b.ID(), b.Customer().Email(), 4, "")
		s.ErrorIs(err, commands.ErrDomainValidation)
	})

	s.Run("error: booking not completed yet", func() {
		s.SetupTest()
		b := s.seedBooking()

		err := s.commands.SubmitReview(ctx, b.ID(), b.Customer().Email(), 4, "")
		s.ErrorIs(err, commands.ErrDomainValidation)
	})

	s.Run("error: wrong email", func() {
		s.SetupTest()
		b := s.seedBooking()
		completed(b)

		err := s.commands.SubmitReview(ctx, b.ID(), "intruder@example.com", 5, "")
		s.ErrorIs(err, commands.ErrBookingAccess)
	})
}

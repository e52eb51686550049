//go:build unit

package booking_test

import (
	"testing"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cancellationWindow = 24 * time.Hour

type testCase struct {
	name   string
	mutate func(*builder.BookingBuilder)
	errIs  error
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewBookingBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NoError(t, err)
				require.NotNil(t, actual)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func TestNewBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, booking.StatusPending, actual.Status())
		assert.Equal(t, booking.PaymentStatusPending, actual.PaymentStatus())
		assert.Nil(t, actual.PaymentID())
		assert.Nil(t, actual.Cancellation())
		assert.Equal(t, "Jane Doe", actual.Customer().FullName())
		assert.Equal(t, "jane.doe@example.com", actual.Customer().Email())
	})

	t.Run("customer validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "missing first name",
				mutate: func(b *builder.BookingBuilder) { b.FirstName = "  " },
				errIs:  booking.ErrInvalidCustomerName,
			},
			{
				name:   "missing last name",
				mutate: func(b *builder.BookingBuilder) { b.LastName = "" },
				errIs:  booking.ErrInvalidCustomerName,
			},
			{
				name:   "malformed email",
				mutate: func(b *builder.BookingBuilder) { b.Email = "not-an-email" },
				errIs:  booking.ErrInvalidCustomerEmail,
			},
			{
				name:   "phone too short",
				mutate: func(b *builder.BookingBuilder) { b.Phone = "123" },
				errIs:  booking.ErrInvalidCustomerPhone,
			},
			{
				name:   "phone with letters",
				mutate: func(b *builder.BookingBuilder) { b.Phone = "555-CALL-NOW" },
				errIs:  booking.ErrInvalidCustomerPhone,
			},
			{
				name:   "international phone",
				mutate: func(b *builder.BookingBuilder) { b.Phone = "+44 20 7946 0958" },
			},
		})
	})

	t.Run("notes validation", func(t *testing.T) {
		long := make([]byte, booking.MaxNotesLength+1)
		for i := range long {
			long[i] = 'n'
		}
		runCases(t, []testCase{
			{
				name:   "maximum length notes",
				mutate: func(b *builder.BookingBuilder) { b.Notes = string(long[1:]) },
			},
			{
				name:   "notes exceed maximum length",
				mutate: func(b *builder.BookingBuilder) { b.Notes = string(long) },
				errIs:  booking.ErrNotesTooLong,
			},
		})
	})

	t.Run("unknown source falls back to website", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.Source = booking.Source("carrier-pigeon")
		}).BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, booking.SourceWebsite, actual.Source())
	})

	t.Run("email is lowercased", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.Email = "Jane.Doe@Example.COM"
		}).BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", actual.Customer().Email())
	})
}

func TestStatusTransitions(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		steps []booking.Status
		errIs error
	}{
		{name: "pending to confirmed", steps: []booking.Status{booking.StatusConfirmed}},
		{name: "pending to cancelled", steps: []booking.Status{booking.StatusCancelled}},
		{name: "pending to no-show", steps: []booking.Status{booking.StatusNoShow}},
		{name: "confirmed to completed", steps: []booking.Status{booking.StatusConfirmed, booking.StatusCompleted}},
		{name: "confirmed to cancelled", steps: []booking.Status{booking.StatusConfirmed, booking.StatusCancelled}},
		{name: "confirmed to no-show", steps: []booking.Status{booking.StatusConfirmed, booking.StatusNoShow}},
		{
			name:  "pending cannot complete directly",
			steps: []booking.Status{booking.StatusCompleted},
			errIs: booking.ErrIllegalTransition,
		},
		{
			name:  "completed is terminal",
			steps: []booking.Status{booking.StatusConfirmed, booking.StatusCompleted, booking.StatusCancelled},
			errIs: booking.ErrIllegalTransition,
		},
		{
			name:  "cancelled is terminal",
			steps: []booking.Status{booking.StatusCancelled, booking.StatusConfirmed},
			errIs: booking.ErrIllegalTransition,
		},
		{
			name:  "no-show is terminal",
			steps: []booking.Status{booking.StatusNoShow, booking.StatusCompleted},
			errIs: booking.ErrIllegalTransition,
		},
		{
			name:  "unknown status",
			steps: []booking.Status{booking.Status("postponed")},
			errIs: booking.ErrInvalidStatus,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := builder.NewBookingBuilder().BuildDomain()
			require.NoError(t, err)

			var lastErr error
			for _, to := range c.steps {
				var ev booking.Event
				ev, lastErr = b.TransitionTo(to, "admin", now)
				if lastErr != nil {
					break
				}
				assert.Equal(t, to, ev.Status)
				assert.Equal(t, "admin", ev.Actor)
			}

			if c.errIs == nil {
				require.NoError(t, lastErr)
				assert.Equal(t, c.steps[len(c.steps)-1], b.Status())
			} else {
				require.ErrorIs(t, lastErr, c.errIs)
			}
		})
	}
}

func TestCancellationWindow(t *testing.T) {
	loc := time.UTC
	newConfirmed := func(t *testing.T) *booking.Booking {
		t.Helper()
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		_, err = b.TransitionTo(booking.StatusConfirmed, "system", b.CreatedAt())
		require.NoError(t, err)
		return b
	}

	t.Run("exactly the window remaining is allowed", func(t *testing.T) {
		b := newConfirmed(t)
		start := b.Appointment().StartAt(loc)
		now := start.Add(-cancellationWindow)

		ev, err := b.Cancel("change of plans", "customer", now, loc, cancellationWindow)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, ev.Status)
		assert.Equal(t, booking.StatusCancelled, b.Status())
		require.NotNil(t, b.Cancellation())
		assert.Equal(t, "change of plans", b.Cancellation().Reason)
	})

	t.Run("one minute inside the window is rejected", func(t *testing.T) {
		b := newConfirmed(t)
		start := b.Appointment().StartAt(loc)
		now := start.Add(-cancellationWindow + time.Minute)

		_, err := b.Cancel("too late", "customer", now, loc, cancellationWindow)
		require.ErrorIs(t, err, booking.ErrCancellationWindow)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		b := newConfirmed(t)
		_, err := b.TransitionTo(booking.StatusCompleted, "admin", b.CreatedAt())
		require.NoError(t, err)

		start := b.Appointment().StartAt(loc)
		_, err = b.Cancel("nope", "customer", start.Add(-48*time.Hour), loc, cancellationWindow)
		require.ErrorIs(t, err, booking.ErrAlreadyTerminal)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		b := newConfirmed(t)
		start := b.Appointment().StartAt(loc)
		now := start.Add(-48 * time.Hour)

		_, err := b.Cancel("first", "customer", now, loc, cancellationWindow)
		require.NoError(t, err)
		_, err = b.Cancel("second", "customer", now, loc, cancellationWindow)
		require.ErrorIs(t, err, booking.ErrAlreadyTerminal)
	})
}

func TestMarkPaid(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	paymentID := uuid.New()

	t.Run("confirms pending booking", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		ev, changed, err := b.MarkPaid(paymentID, "stripe", now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, booking.StatusConfirmed, ev.Status)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, booking.PaymentStatusPaid, b.PaymentStatus())
		require.NotNil(t, b.PaymentID())
		assert.Equal(t, paymentID, *b.PaymentID())
	})

	t.Run("replay is a no-op", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		_, changed, err := b.MarkPaid(paymentID, "stripe", now)
		require.NoError(t, err)
		require.True(t, changed)

		_, changed, err = b.MarkPaid(paymentID, "stripe", now.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("failed payment leaves booking pending for retry", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		b.MarkPaymentFailed(paymentID, now)
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, booking.PaymentStatusFailed, b.PaymentStatus())

		_, changed, err := b.MarkPaid(paymentID, "stripe", now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, booking.PaymentStatusPaid, b.PaymentStatus())
	})

	t.Run("cancelled booking cannot be paid", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		_, err = b.TransitionTo(booking.StatusCancelled, "admin", now)
		require.NoError(t, err)

		_, changed, err := b.MarkPaid(paymentID, "stripe", now)
		require.ErrorIs(t, err, booking.ErrIllegalTransition)
		assert.False(t, changed)
	})
}

func TestApplyRefund(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	paid := func(t *testing.T) *booking.Booking {
		t.Helper()
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		_, _, err = b.MarkPaid(uuid.New(), "stripe", now)
		require.NoError(t, err)
		return b
	}

	t.Run("full refund cancels the booking", func(t *testing.T) {
		b := paid(t)
		ev, err := b.ApplyRefund(true, "admin", now)
		require.NoError(t, err)
		require.NotNil(t, ev)
		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.Equal(t, booking.PaymentStatusRefunded, b.PaymentStatus())
		require.NotNil(t, b.Cancellation())
	})

	t.Run("partial refund keeps the booking", func(t *testing.T) {
		b := paid(t)
		ev, err := b.ApplyRefund(false, "admin", now)
		require.NoError(t, err)
		assert.Nil(t, ev)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Nil(t, b.Cancellation())
		assert.Equal(t, booking.PaymentStatusPartiallyRefunded, b.PaymentStatus())
	})

	t.Run("refund after completion only updates payment state", func(t *testing.T) {
		b := paid(t)
		_, err := b.TransitionTo(booking.StatusCompleted, "admin", now)
		require.NoError(t, err)

		ev, err := b.ApplyRefund(true, "admin", now)
		require.NoError(t, err)
		assert.Nil(t, ev)
		assert.Equal(t, booking.StatusCompleted, b.Status())
		assert.Equal(t, booking.PaymentStatusRefunded, b.PaymentStatus())
	})
}

func TestReminders(t *testing.T) {
	loc := time.UTC

	confirmed := func(t *testing.T) *booking.Booking {
		t.Helper()
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		_, err = b.TransitionTo(booking.StatusConfirmed, "system", b.CreatedAt())
		require.NoError(t, err)
		return b
	}

	t.Run("24h reminder window", func(t *testing.T) {
		b := confirmed(t)
		start := b.Appointment().StartAt(loc)

		assert.False(t, b.NeedsReminder(booking.Reminder24h, start.Add(-25*time.Hour), loc))
		assert.True(t, b.NeedsReminder(booking.Reminder24h, start.Add(-24*time.Hour), loc))
		assert.True(t, b.NeedsReminder(booking.Reminder24h, start.Add(-23*time.Hour-30*time.Minute), loc))
		assert.False(t, b.NeedsReminder(booking.Reminder24h, start.Add(-23*time.Hour), loc))
	})

	t.Run("2h reminder window", func(t *testing.T) {
		b := confirmed(t)
		start := b.Appointment().StartAt(loc)

		assert.False(t, b.NeedsReminder(booking.Reminder2h, start.Add(-3*time.Hour), loc))
		assert.True(t, b.NeedsReminder(booking.Reminder2h, start.Add(-2*time.Hour), loc))
		assert.False(t, b.NeedsReminder(booking.Reminder2h, start.Add(-90*time.Minute), loc))
	})

	t.Run("each kind fires once", func(t *testing.T) {
		b := confirmed(t)
		start := b.Appointment().StartAt(loc)
		now := start.Add(-24 * time.Hour)

		require.True(t, b.NeedsReminder(booking.Reminder24h, now, loc))
		_, err := b.MarkReminderSent(booking.Reminder24h, "email", now)
		require.NoError(t, err)
		assert.False(t, b.NeedsReminder(booking.Reminder24h, now, loc))
		require.Len(t, b.Reminders(), 1)
	})

	t.Run("pending bookings get no reminders", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		start := b.Appointment().StartAt(loc)
		assert.False(t, b.NeedsReminder(booking.Reminder24h, start.Add(-24*time.Hour), loc))
	})
}

func TestAttachReview(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	completed := func(t *testing.T) *booking.Booking {
		t.Helper()
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		_, _, err = b.MarkPaid(uuid.New(), "stripe", now)
		require.NoError(t, err)
		_, err = b.TransitionTo(booking.StatusCompleted, "admin", now)
		require.NoError(t, err)
		return b
	}

	t.Run("review on completed booking", func(t *testing.T) {
		b := completed(t)
		require.NoError(t, b.AttachReview(5, "Wonderful cut", now))
		require.NotNil(t, b.Review())
		assert.Equal(t, 5, b.Review().Rating())
		assert.Equal(t, "Wonderful cut", b.Review().Comment())
	})

	t.Run("only one review", func(t *testing.T) {
		b := completed(t)
		require.NoError(t, b.AttachReview(4, "", now))
		require.ErrorIs(t, b.AttachReview(5, "again", now), booking.ErrReviewAlreadyExists)
	})

	t.Run("not eligible before completion", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		require.ErrorIs(t, b.AttachReview(5, "early", now), booking.ErrReviewNotEligible)
	})

	t.Run("rating bounds", func(t *testing.T) {
		b := completed(t)
		require.ErrorIs(t, b.AttachReview(0, "", now), booking.ErrInvalidRating)
		require.ErrorIs(t, b.AttachReview(6, "", now), booking.ErrInvalidRating)
	})
}

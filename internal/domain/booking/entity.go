package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus       = errors.New("invalid booking status")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrAlreadyTerminal     = errors.New("booking is already in a terminal state")
	ErrCancellationWindow  = errors.New("cancellation window has passed")
	ErrReminderNotDue      = errors.New("reminder is not due")
	ErrReviewNotEligible   = errors.New("booking is not eligible for review")
	ErrReviewAlreadyExists = errors.New("review already submitted")
)

// Booking is the aggregate root of an appointment. Status history is
// append-only: transitions emit Events, never rewrite past ones. A booking
// is never physically deleted; cancellation is a status.
type Booking struct {
	id            uuid.UUID
	customer      Customer
	serviceID     uuid.UUID
	serviceName   string
	appointment   Appointment
	amountCents   int64
	status        Status
	paymentStatus PaymentStatus
	paymentID     *uuid.UUID
	notes         string
	source        Source
	firstTime     bool
	cancellation  *Cancellation
	reminders     []ReminderRecord
	review        *Review
	createdAt     time.Time
	updatedAt     time.Time
}

func NewBooking(
	customer Customer,
	serviceID uuid.UUID,
	serviceName string,
	appointment Appointment,
	amountCents int64,
	notes string,
	source Source,
	firstTime bool,
	now time.Time,
) (*Booking, error) {
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		return nil, ErrNotesTooLong
	}
	if !source.IsValid() {
		source = SourceWebsite
	}

	return &Booking{
		id:            uuid.New(),
		customer:      customer,
		serviceID:     serviceID,
		serviceName:   serviceName,
		appointment:   appointment,
		amountCents:   amountCents,
		status:        StatusPending,
		paymentStatus: PaymentStatusPending,
		notes:         notes,
		source:        source,
		firstTime:     firstTime,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructBooking(
	id uuid.UUID,
	customer Customer,
	serviceID uuid.UUID,
	serviceName string,
	appointment Appointment,
	amountCents int64,
	status Status,
	paymentStatus PaymentStatus,
	paymentID *uuid.UUID,
	notes string,
	source Source,
	firstTime bool,
	cancellation *Cancellation,
	reminders []ReminderRecord,
	review *Review,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		customer:      customer,
		serviceID:     serviceID,
		serviceName:   serviceName,
		appointment:   appointment,
		amountCents:   amountCents,
		status:        status,
		paymentStatus: paymentStatus,
		paymentID:     paymentID,
		notes:         notes,
		source:        source,
		firstTime:     firstTime,
		cancellation:  cancellation,
		reminders:     reminders,
		review:        review,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// TransitionTo moves the state machine and returns the audit fact to append.
func (b *Booking) TransitionTo(to Status, actor string, now time.Time) (Event, error) {
	if !to.IsValid() {
		return Event{}, ErrInvalidStatus
	}
	if !b.status.CanTransitionTo(to) {
		return Event{}, ErrIllegalTransition
	}

	b.status = to
	b.updatedAt = now
	return Event{Status: to, Actor: actor, OccurredAt: now}, nil
}

// CanBeCancelled applies the cancellation policy: terminal bookings cannot
// be cancelled, and the remaining time until the appointment start must be
// at least the window. Exactly the window is still allowed.
func (b *Booking) CanBeCancelled(now time.Time, loc *time.Location, window time.Duration) error {
	if b.status == StatusCompleted || b.status == StatusCancelled {
		return ErrAlreadyTerminal
	}
	if !b.status.CanTransitionTo(StatusCancelled) {
		return ErrIllegalTransition
	}
	if b.appointment.StartAt(loc).Sub(now) < window {
		return ErrCancellationWindow
	}
	return nil
}

func (b *Booking) Cancel(reason, actor string, now time.Time, loc *time.Location, window time.Duration) (Event, error) {
	if err := b.CanBeCancelled(now, loc, window); err != nil {
		return Event{}, err
	}

	ev, err := b.TransitionTo(StatusCancelled, actor, now)
	if err != nil {
		return Event{}, err
	}
	b.cancellation = &Cancellation{Reason: strings.TrimSpace(reason), CancelledAt: now}
	return ev, nil
}

// NeedsReminder reports whether a reminder of the given kind is due: only
// while confirmed, only inside the kind's trailing window, and only if no
// reminder of that kind was recorded before.
func (b *Booking) NeedsReminder(kind ReminderKind, now time.Time, loc *time.Location) bool {
	window, ok := reminderWindows[kind]
	if !ok || b.status != StatusConfirmed {
		return false
	}
	for _, r := range b.reminders {
		if r.Kind == kind {
			return false
		}
	}

	remaining := b.appointment.StartAt(loc).Sub(now)
	return remaining > window.lower && remaining <= window.upper
}

func (b *Booking) MarkReminderSent(kind ReminderKind, method string, now time.Time) (ReminderRecord, error) {
	if !kind.IsValid() {
		return ReminderRecord{}, ErrReminderNotDue
	}
	rec := ReminderRecord{Kind: kind, Method: method, SentAt: now}
	b.reminders = append(b.reminders, rec)
	b.updatedAt = now
	return rec, nil
}

// MarkPaid records a successful payment and confirms the booking. The bool
// reports whether anything changed; replays of the same outcome are no-ops
// so duplicate provider notifications cannot double-apply.
func (b *Booking) MarkPaid(paymentID uuid.UUID, actor string, now time.Time) (Event, bool, error) {
	if b.paymentStatus == PaymentStatusPaid && b.status == StatusConfirmed {
		return Event{}, false, nil
	}

	ev, err := b.TransitionTo(StatusConfirmed, actor, now)
	if err != nil {
		return Event{}, false, err
	}
	b.paymentStatus = PaymentStatusPaid
	b.paymentID = &paymentID
	return ev, true, nil
}

// MarkPaymentFailed leaves the booking pending so the customer can retry.
func (b *Booking) MarkPaymentFailed(paymentID uuid.UUID, now time.Time) {
	b.paymentStatus = PaymentStatusFailed
	b.paymentID = &paymentID
	b.updatedAt = now
}

func (b *Booking) AttachPayment(paymentID uuid.UUID, now time.Time) {
	b.paymentID = &paymentID
	b.paymentStatus = PaymentStatusPending
	b.updatedAt = now
}

// ApplyRefund mirrors the payment's refund state onto paymentStatus. Only a
// full refund cancels the booking (when the transition is still legal); a
// partial refund leaves the booking status untouched.
func (b *Booking) ApplyRefund(fullyRefunded bool, actor string, now time.Time) (*Event, error) {
	if fullyRefunded {
		b.paymentStatus = PaymentStatusRefunded
	} else {
		b.paymentStatus = PaymentStatusPartiallyRefunded
	}
	b.updatedAt = now

	if fullyRefunded && b.status.CanTransitionTo(StatusCancelled) {
		ev, err := b.TransitionTo(StatusCancelled, actor, now)
		if err != nil {
			return nil, err
		}
		if b.cancellation == nil {
			b.cancellation = &Cancellation{Reason: "refund issued", CancelledAt: now}
		}
		return &ev, nil
	}
	return nil, nil
}

func (b *Booking) AttachReview(rating int, comment string, now time.Time) error {
	if b.status != StatusCompleted {
		return ErrReviewNotEligible
	}
	if b.review != nil {
		return ErrReviewAlreadyExists
	}

	review, err := NewReview(rating, comment, now)
	if err != nil {
		return err
	}
	b.review = &review
	b.updatedAt = now
	return nil
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) Customer() Customer           { return b.customer }
func (b *Booking) ServiceID() uuid.UUID         { return b.serviceID }
func (b *Booking) ServiceName() string          { return b.serviceName }
func (b *Booking) Appointment() Appointment     { return b.appointment }
func (b *Booking) AmountCents() int64           { return b.amountCents }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) PaymentID() *uuid.UUID        { return b.paymentID }
func (b *Booking) Notes() string                { return b.notes }
func (b *Booking) Source() Source               { return b.source }
func (b *Booking) IsFirstTime() bool            { return b.firstTime }
func (b *Booking) Cancellation() *Cancellation  { return b.cancellation }
func (b *Booking) Reminders() []ReminderRecord  { return b.reminders }
func (b *Booking) Review() *Review              { return b.review }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }

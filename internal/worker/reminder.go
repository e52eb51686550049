// Package worker hosts background jobs that run alongside the HTTP server.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/metrics"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/usecase/shared"

	"github.com/google/uuid"
)

const reminderMethod = "email"

// reminderSpan is how far a single kind's eligibility window stretches; the
// scan range per kind is (now, now+span] so a poll never misses a booking
// whose window opened between two ticks.
var reminderSpans = map[booking.ReminderKind]time.Duration{
	booking.Reminder24h: 24 * time.Hour,
	booking.Reminder2h:  2 * time.Hour,
}

// ReminderWorker periodically scans confirmed bookings approaching their
// start time and enqueues one reminder notification per kind per booking.
// The domain entity decides eligibility, so reruns and overlapping scans
// cannot double-send.
type ReminderWorker struct {
	uow    shared.UnitOfWork
	policy shared.SalonPolicy
	clock  clock.Clock
	cfg    config.ReminderConfig
	logger *slog.Logger
}

func NewReminderWorker(
	uow shared.UnitOfWork,
	policy shared.SalonPolicy,
	clock clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		uow:    uow,
		policy: policy,
		clock:  clock,
		cfg:    cfg.Reminder,
		logger: logger,
	}
}

// Start launches the polling loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (w *ReminderWorker) Start(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("reminder worker disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()

		w.logger.Info("reminder worker started", "poll_interval", w.cfg.PollInterval.String())
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("reminder worker stopped")
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *ReminderWorker) runOnce(ctx context.Context) {
	now := w.clock.Now()
	for kind, span := range reminderSpans {
		ids, err := w.uow.CommandReads().ConfirmedStartingBetween(ctx, now, now.Add(span))
		if err != nil {
			w.logger.Error("reminder scan failed", "kind", string(kind), "error", err)
			continue
		}

		for _, id := range ids {
			if err := w.sendReminder(ctx, id, kind); err != nil {
				w.logger.Error("reminder dispatch failed",
					"booking_id", id.String(), "kind", string(kind), "error", err)
			}
		}
	}
}

type reminderPayload struct {
	BookingID     string `json:"booking_id"`
	Kind          string `json:"kind"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	ServiceName   string `json:"service_name"`
	StartsAt      string `json:"starts_at"`
}

func (w *ReminderWorker) sendReminder(ctx context.Context, id uuid.UUID, kind booking.ReminderKind) error {
	return w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := w.clock.Now()
		if !b.NeedsReminder(kind, now, w.policy.Location) {
			return nil
		}

		rec, err := b.MarkReminderSent(kind, reminderMethod, now)
		if err != nil {
			return err
		}
		if err := tx.Bookings().AddReminder(ctx, b.ID(), rec); err != nil {
			return err
		}

		payload, err := json.Marshal(reminderPayload{
			BookingID:     b.ID().String(),
			Kind:          string(kind),
			CustomerEmail: b.Customer().Email(),
			CustomerName:  b.Customer().FullName(),
			ServiceName:   b.ServiceName(),
			StartsAt:      b.Appointment().StartAt(w.policy.Location).Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		if err := tx.Notifications().CreateJob(ctx, "email", "booking_reminder_"+string(kind), payload, now); err != nil {
			return err
		}

		metrics.IncReminderSent(string(kind))
		return nil
	})
}

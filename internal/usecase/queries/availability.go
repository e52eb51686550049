package queries

import (
	"context"
	"time"

	"salon-booking-api/internal/domain/schedule"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/errs"
	"salon-booking-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrServiceInactive = errs.New("service is not bookable")
	ErrInvalidDateSpan = errs.New("invalid date span")
)

const (
	reasonPastDate = "date is in the past"
	// MaxAvailabilitySpanDays caps multi-day lookups to two weeks per request.
	MaxAvailabilitySpanDays = 14
	// DefaultSlotDurationMinutes sizes the grid when no service is given.
	DefaultSlotDurationMinutes = 60
)

// ScheduleReadStore exposes the occupied intervals of a calendar date.
// Only pending and confirmed bookings count.
type ScheduleReadStore interface {
	ActiveIntervalsOn(ctx context.Context, date time.Time) ([]schedule.Interval, error)
}

// AvailabilityQueries computes bookable start times. A zero serviceID asks
// for a generic grid sized by DefaultSlotDurationMinutes.
type AvailabilityQueries interface {
	GetDay(ctx context.Context, date time.Time, serviceID uuid.UUID) (*AvailabilityView, error)
	GetSpan(ctx context.Context, from time.Time, days int, serviceID uuid.UUID) ([]*AvailabilityView, error)
}

type availabilityQueriesImpl struct {
	services ServiceReadStore
	store    ScheduleReadStore
	policy   shared.SalonPolicy
	clock    clock.Clock
}

func NewAvailabilityQueries(
	services ServiceReadStore,
	store ScheduleReadStore,
	policy shared.SalonPolicy,
	clock clock.Clock,
) AvailabilityQueries {
	return &availabilityQueriesImpl{
		services: services,
		store:    store,
		policy:   policy,
		clock:    clock,
	}
}

func (q *availabilityQueriesImpl) GetDay(ctx context.Context, date time.Time, serviceID uuid.UUID) (*AvailabilityView, error) {
	svc, err := q.resolveService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	return q.dayAvailability(ctx, date, svc)
}

func (q *availabilityQueriesImpl) GetSpan(ctx context.Context, from time.Time, days int, serviceID uuid.UUID) ([]*AvailabilityView, error) {
	if days <= 0 || days > MaxAvailabilitySpanDays {
		return nil, ErrInvalidDateSpan
	}

	svc, err := q.resolveService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	views := make([]*AvailabilityView, 0, days)
	for i := 0; i < days; i++ {
		view, err := q.dayAvailability(ctx, from.AddDate(0, 0, i), svc)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (q *availabilityQueriesImpl) resolveService(ctx context.Context, serviceID uuid.UUID) (*ServiceView, error) {
	if serviceID == uuid.Nil {
		return &ServiceView{DurationMinutes: DefaultSlotDurationMinutes, Active: true}, nil
	}

	svc, err := q.services.FindByID(ctx, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if !svc.Active {
		return nil, ErrServiceInactive
	}
	return svc, nil
}

func (q *availabilityQueriesImpl) dayAvailability(ctx context.Context, date time.Time, svc *ServiceView) (*AvailabilityView, error) {
	now := q.clock.Now()
	today := q.policy.Today(now)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, q.policy.Location)

	view := &AvailabilityView{
		Date:  day.Format("2006-01-02"),
		Slots: []string{},
	}
	if svc.ID != uuid.Nil {
		id := svc.ID
		view.ServiceID = &id
	}

	if day.Before(today) {
		view.Closed = true
		view.Reason = reasonPastDate
		return view, nil
	}

	candidates, reason, err := schedule.GenerateSlots(day, q.policy.Hours, q.policy.SlotStepMinutes, svc.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if reason != schedule.ReasonOpen {
		view.Closed = true
		view.Reason = string(reason)
		return view, nil
	}

	existing, err := q.store.ActiveIntervalsOn(ctx, day)
	if err != nil {
		return nil, err
	}

	free := schedule.FilterAvailable(candidates, svc.DurationMinutes, existing, q.policy.BufferMinutes)

	// Same-day lookups drop starts that have already passed.
	minuteOfDay := -1
	if day.Equal(today) {
		local := now.In(q.policy.Location)
		minuteOfDay = local.Hour()*60 + local.Minute()
	}

	for _, slot := range free {
		if slot.Minutes() <= minuteOfDay {
			continue
		}
		view.Slots = append(view.Slots, slot.String())
	}
	return view, nil
}

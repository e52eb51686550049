//go:build unit

package commands_test

import (
	"context"
	"errors"
	"time"

	"salon-booking-api/internal/domain/booking"
	"salon-booking-api/internal/domain/catalog"
	"salon-booking-api/internal/domain/payment"
	"salon-booking-api/internal/domain/schedule"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/infra/db"
	"salon-booking-api/internal/usecase/commands"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"

	"github.com/google/uuid"
)

func notFoundErr() error {
	return infra.WrapRepoErr("not found", errors.New("no rows"), infra.KindNotFound)
}

type notificationJob struct {
	Kind  string
	Topic string
}

// fakeUoW runs the transactional closures directly against in-memory repos.
type fakeUoW struct {
	tx    *fakeTx
	reads *fakeReads
}

func newFakeUoW() *fakeUoW {
	reads := &fakeReads{}
	tx := &fakeTx{
		bookings:      &fakeBookingRepo{store: map[uuid.UUID]*booking.Booking{}},
		payments:      &fakePaymentRepo{store: map[uuid.UUID]*payment.Payment{}},
		services:      &fakeServiceRepo{},
		staff:         &fakeStaffRepo{},
		idempotency:   newFakeIdempotencyRepo(),
		notifications: &fakeNotificationRepo{},
		reads:         reads,
	}
	return &fakeUoW{tx: tx, reads: reads}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads { return u.reads }

type fakeTx struct {
	bookings      *fakeBookingRepo
	payments      *fakePaymentRepo
	services      *fakeServiceRepo
	staff         *fakeStaffRepo
	idempotency   *fakeIdempotencyRepo
	notifications *fakeNotificationRepo
	reads         *fakeReads
}

func (t *fakeTx) Bookings() shared.BookingRepository           { return t.bookings }
func (t *fakeTx) Payments() shared.PaymentRepository           { return t.payments }
func (t *fakeTx) Services() shared.ServiceRepository           { return t.services }
func (t *fakeTx) Staff() shared.StaffRepository                { return t.staff }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository    { return t.idempotency }
func (t *fakeTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *fakeTx) Reads() shared.CommandReads                   { return t.reads }
func (t *fakeTx) DB() db.DBTX                                  { return nil }

type fakeReads struct {
	service      *shared.ServiceSnapshot
	serviceErr   error
	bookingSnap  *shared.BookingSnapshot
	bookingErr   error
	intervals    []schedule.Interval
	confirmedIDs []uuid.UUID
}

func (r *fakeReads) ServiceByID(_ context.Context, _ uuid.UUID) (*shared.ServiceSnapshot, error) {
	if r.serviceErr != nil {
		return nil, r.serviceErr
	}
	return r.service, nil
}

func (r *fakeReads) BookingByID(_ context.Context, _ uuid.UUID) (*shared.BookingSnapshot, error) {
	if r.bookingErr != nil {
		return nil, r.bookingErr
	}
	if r.bookingSnap == nil {
		return nil, notFoundErr()
	}
	return r.bookingSnap, nil
}

func (r *fakeReads) ActiveIntervalsOn(_ context.Context, _ time.Time) ([]schedule.Interval, error) {
	return r.intervals, nil
}

func (r *fakeReads) ConfirmedStartingBetween(_ context.Context, _, _ time.Time) ([]uuid.UUID, error) {
	return r.confirmedIDs, nil
}

type fakeBookingRepo struct {
	store       map[uuid.UUID]*booking.Booking
	intervals   []schedule.Interval
	createErr   error
	createCalls int
	events      []booking.Event
	reminders   []booking.ReminderRecord
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking, _ time.Time) (uuid.UUID, error) {
	r.createCalls++
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	r.store[b.ID()] = b
	return b.ID(), nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.store[id]
	if !ok {
		return nil, notFoundErr()
	}
	return b, nil
}

func (r *fakeBookingRepo) UpdateState(_ context.Context, b *booking.Booking) error {
	r.store[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) AppendEvent(_ context.Context, _ uuid.UUID, ev booking.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeBookingRepo) AddReminder(_ context.Context, _ uuid.UUID, rec booking.ReminderRecord) error {
	r.reminders = append(r.reminders, rec)
	return nil
}

func (r *fakeBookingRepo) AttachReview(_ context.Context, _ uuid.UUID, _ booking.Review) error {
	return nil
}

func (r *fakeBookingRepo) ActiveIntervalsOnForUpdate(_ context.Context, _ time.Time) ([]schedule.Interval, error) {
	return r.intervals, nil
}

type fakePaymentRepo struct {
	store   map[uuid.UUID]*payment.Payment
	refunds []payment.Refund
}

func (r *fakePaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	r.store[p.ID()] = p
	return nil
}

func (r *fakePaymentRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, notFoundErr()
	}
	return p, nil
}

func (r *fakePaymentRepo) FindByProviderRefForUpdate(_ context.Context, ref string) (*payment.Payment, error) {
	for _, p := range r.store {
		if p.ProviderRef() == ref {
			return p, nil
		}
	}
	return nil, notFoundErr()
}

func (r *fakePaymentRepo) FindLatestByBookingForUpdate(_ context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	var latest *payment.Payment
	for _, p := range r.store {
		if p.BookingID() != bookingID {
			continue
		}
		if latest == nil || p.CreatedAt().After(latest.CreatedAt()) {
			latest = p
		}
	}
	if latest == nil {
		return nil, notFoundErr()
	}
	return latest, nil
}

func (r *fakePaymentRepo) UpdateState(_ context.Context, p *payment.Payment) error {
	r.store[p.ID()] = p
	return nil
}

func (r *fakePaymentRepo) AddRefund(_ context.Context, _ uuid.UUID, ref payment.Refund) error {
	r.refunds = append(r.refunds, ref)
	return nil
}

type fakeServiceRepo struct {
	created *catalog.Service
	updated *catalog.Service
	stored  *catalog.Service
}

func (r *fakeServiceRepo) Create(_ context.Context, s *catalog.Service) error {
	r.created = s
	r.stored = s
	return nil
}

func (r *fakeServiceRepo) Update(_ context.Context, s *catalog.Service) error {
	r.updated = s
	r.stored = s
	return nil
}

func (r *fakeServiceRepo) FindByIDForUpdate(_ context.Context, _ uuid.UUID) (*catalog.Service, error) {
	if r.stored == nil {
		return nil, notFoundErr()
	}
	return r.stored, nil
}

type fakeStaffRepo struct{}

func (r *fakeStaffRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID) error { return nil }

type fakeIdempotencyRepo struct {
	records map[string]*shared.IdempotencyRecord
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{records: map[string]*shared.IdempotencyRecord{}}
}

func idemKey(key uuid.UUID, scope string) string {
	return key.String() + "|" + scope
}

func (r *fakeIdempotencyRepo) TryInsert(_ context.Context, key uuid.UUID, scope, requestHash string, expiresAt time.Time) (bool, error) {
	k := idemKey(key, scope)
	if _, ok := r.records[k]; ok {
		return false, nil
	}
	r.records[k] = &shared.IdempotencyRecord{
		Key:         key,
		Scope:       scope,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *fakeIdempotencyRepo) Find(_ context.Context, key uuid.UUID, scope string) (*shared.IdempotencyRecord, error) {
	rec, ok := r.records[idemKey(key, scope)]
	if !ok {
		return nil, notFoundErr()
	}
	return rec, nil
}

func (r *fakeIdempotencyRepo) Complete(_ context.Context, key uuid.UUID, scope string, resultID uuid.UUID) error {
	rec, ok := r.records[idemKey(key, scope)]
	if !ok {
		return notFoundErr()
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResultID = &resultID
	return nil
}

func (r *fakeIdempotencyRepo) ClaimExpired(_ context.Context, key uuid.UUID, scope, requestHash string, expiresAt time.Time) (int64, error) {
	rec, ok := r.records[idemKey(key, scope)]
	if !ok || !rec.ExpiresAt.Before(time.Now()) {
		return 0, nil
	}
	rec.Status = shared.IdempotencyStatusProcessing
	rec.RequestHash = requestHash
	rec.ExpiresAt = expiresAt
	return 1, nil
}

type fakeNotificationRepo struct {
	jobs []notificationJob
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, kind, topic string, _ []byte, _ time.Time) error {
	r.jobs = append(r.jobs, notificationJob{Kind: kind, Topic: topic})
	return nil
}

type fakeBookingQueries struct {
	views map[uuid.UUID]*queries.BookingView
}

func newFakeBookingQueries() *fakeBookingQueries {
	return &fakeBookingQueries{views: map[uuid.UUID]*queries.BookingView{}}
}

func (q *fakeBookingQueries) GetByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	if v, ok := q.views[id]; ok {
		return v, nil
	}
	return &queries.BookingView{ID: id}, nil
}

func (q *fakeBookingQueries) GetByIDForCustomer(ctx context.Context, id uuid.UUID, _ string) (*queries.BookingView, error) {
	return q.GetByID(ctx, id)
}

func (q *fakeBookingQueries) List(_ context.Context, _ queries.BookingFilters, _ *queries.Cursor, _ int) ([]*queries.BookingListItem, *queries.Cursor, error) {
	return nil, nil, nil
}

func (q *fakeBookingQueries) ListByCustomerEmail(_ context.Context, _ string, _ int) ([]*queries.BookingListItem, error) {
	return nil, nil
}

type fakePaymentQueries struct {
	views map[uuid.UUID]*queries.PaymentView
}

func newFakePaymentQueries() *fakePaymentQueries {
	return &fakePaymentQueries{views: map[uuid.UUID]*queries.PaymentView{}}
}

func (q *fakePaymentQueries) GetByID(_ context.Context, id uuid.UUID) (*queries.PaymentView, error) {
	if v, ok := q.views[id]; ok {
		return v, nil
	}
	return nil, queries.ErrPaymentNotFound
}

func (q *fakePaymentQueries) ListByBooking(_ context.Context, _ uuid.UUID) ([]*queries.PaymentView, error) {
	return nil, nil
}

func (q *fakePaymentQueries) List(_ context.Context, _ *queries.Cursor, _ int) ([]*queries.PaymentListItem, *queries.Cursor, error) {
	return nil, nil, nil
}

type providerCall struct {
	Method string
	Ref    string
	Amount int64
}

type fakeProvider struct {
	intent      *commands.ProviderIntent
	intentErr   error
	retrieved   *commands.ProviderIntent
	retrieveErr error
	refund      *commands.ProviderRefund
	refundErr   error
	event       *commands.WebhookEvent
	verifyErr   error
	calls       []providerCall
}

func (p *fakeProvider) CreateIntent(_ context.Context, amountCents int64, _ string, _ uuid.UUID) (*commands.ProviderIntent, error) {
	p.calls = append(p.calls, providerCall{Method: "create", Amount: amountCents})
	if p.intentErr != nil {
		return nil, p.intentErr
	}
	return p.intent, nil
}

func (p *fakeProvider) RetrieveIntent(_ context.Context, ref string) (*commands.ProviderIntent, error) {
	p.calls = append(p.calls, providerCall{Method: "retrieve", Ref: ref})
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	return p.retrieved, nil
}

func (p *fakeProvider) Refund(_ context.Context, ref string, amountCents int64, _ string) (*commands.ProviderRefund, error) {
	p.calls = append(p.calls, providerCall{Method: "refund", Ref: ref, Amount: amountCents})
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	return p.refund, nil
}

func (p *fakeProvider) VerifyWebhook(_ []byte, _ string) (*commands.WebhookEvent, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.event, nil
}

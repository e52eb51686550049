package booking

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"salon-booking-api/internal/domain/schedule"
)

var (
	ErrInvalidCustomerName  = errors.New("customer first and last name are required")
	ErrInvalidCustomerEmail = errors.New("invalid customer email")
	ErrInvalidCustomerPhone = errors.New("invalid customer phone")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong       = errors.New("review comment exceeds maximum length")
	ErrNotesTooLong         = errors.New("notes exceed maximum length")
)

const (
	MaxCommentLength = 1000
	MaxNotesLength   = 500
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)
)

// Customer is the contact block captured on submission. Bookings are taken
// from anonymous visitors, so there is no account reference.
type Customer struct {
	firstName string
	lastName  string
	email     string
	phone     string
}

func NewCustomer(firstName, lastName, email, phone string) (Customer, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return Customer{}, ErrInvalidCustomerName
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return Customer{}, ErrInvalidCustomerEmail
	}

	phone = strings.TrimSpace(phone)
	if !phoneRegex.MatchString(phone) {
		return Customer{}, ErrInvalidCustomerPhone
	}

	return Customer{firstName: firstName, lastName: lastName, email: email, phone: phone}, nil
}

func ReconstructCustomer(firstName, lastName, email, phone string) Customer {
	return Customer{firstName: firstName, lastName: lastName, email: email, phone: phone}
}

func (c Customer) FirstName() string { return c.firstName }
func (c Customer) LastName() string  { return c.lastName }
func (c Customer) Email() string     { return c.email }
func (c Customer) Phone() string     { return c.phone }

func (c Customer) FullName() string {
	return c.firstName + " " + c.lastName
}

// Appointment pins a booking to a calendar date, a start time and the
// duration snapshotted from the service.
type Appointment struct {
	date            time.Time // date component only, in the salon's location
	start           schedule.TimeOfDay
	durationMinutes int
}

func NewAppointment(date time.Time, start schedule.TimeOfDay, durationMinutes int) (Appointment, error) {
	if _, err := schedule.NewInterval(start, durationMinutes); err != nil {
		return Appointment{}, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return Appointment{date: day, start: start, durationMinutes: durationMinutes}, nil
}

func (a Appointment) Date() time.Time           { return a.date }
func (a Appointment) Start() schedule.TimeOfDay { return a.start }
func (a Appointment) DurationMinutes() int      { return a.durationMinutes }

func (a Appointment) Interval() schedule.Interval {
	iv, _ := schedule.NewInterval(a.start, a.durationMinutes)
	return iv
}

// StartAt is the absolute start instant in the salon's location.
func (a Appointment) StartAt(loc *time.Location) time.Time {
	return a.start.At(a.date, loc)
}

type Review struct {
	rating      int
	comment     string
	submittedAt time.Time
}

func NewReview(rating int, comment string, submittedAt time.Time) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > MaxCommentLength {
		return Review{}, ErrCommentTooLong
	}
	return Review{rating: rating, comment: comment, submittedAt: submittedAt}, nil
}

func (r Review) Rating() int            { return r.rating }
func (r Review) Comment() string        { return r.comment }
func (r Review) SubmittedAt() time.Time { return r.submittedAt }

// ReminderRecord is one entry of the append-only reminder log.
type ReminderRecord struct {
	Kind   ReminderKind
	Method string
	SentAt time.Time
}

// Event is an immutable audit fact appended on every status transition.
type Event struct {
	Status     Status
	Actor      string
	OccurredAt time.Time
}

type Cancellation struct {
	Reason      string
	CancelledAt time.Time
}

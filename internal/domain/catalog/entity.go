package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCategory = errors.New("invalid service category")
	ErrEmptyName       = errors.New("service name cannot be empty")
	ErrNegativePrice   = errors.New("service price cannot be negative")
	ErrInvalidDuration = errors.New("service duration must be between 15 and 480 minutes")
)

const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480
)

// Service is a bookable offering. Price and duration are snapshotted onto a
// booking at creation time, so later administrative edits never invalidate
// past appointments.
type Service struct {
	id              uuid.UUID
	name            string
	description     string
	category        Category
	priceCents      int64
	durationMinutes int
	active          bool
	createdAt       time.Time
	updatedAt       time.Time
}

func NewService(name, description string, category Category, priceCents int64, durationMinutes int, now time.Time) (*Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return nil, ErrInvalidDuration
	}

	return &Service{
		id:              uuid.New(),
		name:            name,
		description:     strings.TrimSpace(description),
		category:        category,
		priceCents:      priceCents,
		durationMinutes: durationMinutes,
		active:          true,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructService(
	id uuid.UUID,
	name, description string,
	category Category,
	priceCents int64,
	durationMinutes int,
	active bool,
	createdAt, updatedAt time.Time,
) *Service {
	return &Service{
		id:              id,
		name:            name,
		description:     description,
		category:        category,
		priceCents:      priceCents,
		durationMinutes: durationMinutes,
		active:          active,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (s *Service) Update(name, description string, category Category, priceCents int64, durationMinutes int, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if !category.IsValid() {
		return ErrInvalidCategory
	}
	if priceCents < 0 {
		return ErrNegativePrice
	}
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return ErrInvalidDuration
	}

	s.name = name
	s.description = strings.TrimSpace(description)
	s.category = category
	s.priceCents = priceCents
	s.durationMinutes = durationMinutes
	s.updatedAt = now
	return nil
}

func (s *Service) Deactivate(now time.Time) {
	s.active = false
	s.updatedAt = now
}

func (s *Service) ID() uuid.UUID        { return s.id }
func (s *Service) Name() string         { return s.name }
func (s *Service) Description() string  { return s.description }
func (s *Service) Category() Category   { return s.category }
func (s *Service) PriceCents() int64    { return s.priceCents }
func (s *Service) DurationMinutes() int { return s.durationMinutes }
func (s *Service) IsActive() bool       { return s.active }
func (s *Service) CreatedAt() time.Time { return s.createdAt }
func (s *Service) UpdatedAt() time.Time { return s.updatedAt }

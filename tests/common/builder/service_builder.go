//go:build unit

package builder

import (
	"time"

	"salon-booking-api/internal/domain/catalog"
)

type ServiceBuilder struct {
	Name            string
	Description     string
	Category        catalog.Category
	PriceCents      int64
	DurationMinutes int
	Now             time.Time
}

func NewServiceBuilder() *ServiceBuilder {
	return &ServiceBuilder{
		Name:            "Women's Haircut",
		Description:     "Shampoo, cut and blow dry",
		Category:        catalog.CategoryCuts,
		PriceCents:      6500,
		DurationMinutes: 60,
		Now:             time.Now(),
	}
}

func (s *ServiceBuilder) With(mutate func(*ServiceBuilder)) *ServiceBuilder {
	mutate(s)
	return s
}

func (s *ServiceBuilder) BuildDomain() (*catalog.Service, error) {
	return catalog.NewService(s.Name, s.Description, s.Category, s.PriceCents, s.DurationMinutes, s.Now)
}

package response

import (
	"time"

	"salon-booking-api/internal/usecase/queries"

	"github.com/google/uuid"
)

type ServiceResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category"`
	PriceCents      int64     `json:"priceCents"`
	DurationMinutes int       `json:"durationMinutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func FromServiceView(v *queries.ServiceView) *ServiceResponse {
	return &ServiceResponse{
		ID:              v.ID,
		Name:            v.Name,
		Description:     v.Description,
		Category:        v.Category,
		PriceCents:      v.PriceCents,
		DurationMinutes: v.DurationMinutes,
		Active:          v.Active,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func FromServiceViews(views []*queries.ServiceView) []*ServiceResponse {
	out := make([]*ServiceResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromServiceView(v))
	}
	return out
}

type AvailabilityResponse struct {
	Date      string     `json:"date"`
	ServiceID *uuid.UUID `json:"serviceId,omitempty"`
	Slots     []string   `json:"slots"`
	Closed    bool       `json:"closed"`
	Reason    string     `json:"reason,omitempty"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	return &AvailabilityResponse{
		Date:      v.Date,
		ServiceID: v.ServiceID,
		Slots:     v.Slots,
		Closed:    v.Closed,
		Reason:    v.Reason,
	}
}

func FromAvailabilityViews(views []*queries.AvailabilityView) []*AvailabilityResponse {
	out := make([]*AvailabilityResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromAvailabilityView(v))
	}
	return out
}

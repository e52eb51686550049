package request

type CreateServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category" binding:"required"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
}

type UpdateServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category" binding:"required"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
}

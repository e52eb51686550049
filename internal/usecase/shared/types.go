package shared

import (
	"time"

	"github.com/google/uuid"
)

// Write-side snapshots keep commands off the read-model query types.
type ServiceSnapshot struct {
	ID              uuid.UUID
	Name            string
	Category        string
	PriceCents      int64
	DurationMinutes int
	Active          bool
}

type BookingSnapshot struct {
	ID              uuid.UUID
	Status          string
	PaymentStatus   string
	CustomerEmail   string
	Date            time.Time
	StartMinutes    int
	DurationMinutes int
	AmountCents     int64
}

type IdempotencyRecord struct {
	Key         uuid.UUID
	Scope       string
	Status      string
	RequestHash string
	ResultID    *uuid.UUID
	ExpiresAt   time.Time
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

//go:build unit

package catalog_test

import (
	"testing"
	"time"

	"salon-booking-api/internal/domain/catalog"
	"salon-booking-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.ServiceBuilder)
	errIs  error
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewServiceBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NoError(t, err)
				require.NotNil(t, actual)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func TestNewService(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.True(t, actual.IsActive())
		assert.Equal(t, "Women's Haircut", actual.Name())
		assert.Equal(t, catalog.CategoryCuts, actual.Category())
		assert.Equal(t, int64(6500), actual.PriceCents())
		assert.Equal(t, 60, actual.DurationMinutes())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "empty name",
				mutate: func(b *builder.ServiceBuilder) { b.Name = "   " },
				errIs:  catalog.ErrEmptyName,
			},
			{
				name:   "unknown category",
				mutate: func(b *builder.ServiceBuilder) { b.Category = catalog.Category("massage") },
				errIs:  catalog.ErrInvalidCategory,
			},
			{
				name:   "negative price",
				mutate: func(b *builder.ServiceBuilder) { b.PriceCents = -1 },
				errIs:  catalog.ErrNegativePrice,
			},
			{
				name:   "free consultation is allowed",
				mutate: func(b *builder.ServiceBuilder) { b.PriceCents = 0; b.Category = catalog.CategoryConsultations },
			},
			{
				name:   "duration below minimum",
				mutate: func(b *builder.ServiceBuilder) { b.DurationMinutes = 10 },
				errIs:  catalog.ErrInvalidDuration,
			},
			{
				name:   "minimum duration",
				mutate: func(b *builder.ServiceBuilder) { b.DurationMinutes = catalog.MinDurationMinutes },
			},
			{
				name:   "maximum duration",
				mutate: func(b *builder.ServiceBuilder) { b.DurationMinutes = catalog.MaxDurationMinutes },
			},
			{
				name:   "duration above maximum",
				mutate: func(b *builder.ServiceBuilder) { b.DurationMinutes = catalog.MaxDurationMinutes + 1 },
				errIs:  catalog.ErrInvalidDuration,
			},
		})
	})
}

func TestServiceUpdate(t *testing.T) {
	now := time.Now()

	t.Run("updates all fields", func(t *testing.T) {
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		later := now.Add(time.Hour)
		err = svc.Update("Balayage", "Full balayage with toner", catalog.CategoryColor, 18500, 180, later)
		require.NoError(t, err)

		assert.Equal(t, "Balayage", svc.Name())
		assert.Equal(t, catalog.CategoryColor, svc.Category())
		assert.Equal(t, int64(18500), svc.PriceCents())
		assert.Equal(t, 180, svc.DurationMinutes())
		assert.Equal(t, later, svc.UpdatedAt())
	})

	t.Run("rejects invalid update and keeps state", func(t *testing.T) {
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		err = svc.Update("", "", catalog.CategoryCuts, 1000, 30, now)
		require.ErrorIs(t, err, catalog.ErrEmptyName)
		assert.Equal(t, "Women's Haircut", svc.Name())
	})
}

func TestServiceDeactivate(t *testing.T) {
	svc, err := builder.NewServiceBuilder().BuildDomain()
	require.NoError(t, err)
	require.True(t, svc.IsActive())

	svc.Deactivate(time.Now())
	assert.False(t, svc.IsActive())
}

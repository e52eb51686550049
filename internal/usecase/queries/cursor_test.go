//go:build unit

package queries_test

import (
	"testing"
	"time"

	"salon-booking-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 3, 10, 14, 30, 15, 123456000, time.UTC)

	encoded := queries.EncodeAfterCursor(at, id)
	gotTime, gotID, err := queries.DecodeAfterCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.True(t, at.Equal(gotTime), "expected %v, got %v", at, gotTime)
}

func TestDecodeAfterCursorRejectsGarbage(t *testing.T) {
	cases := []struct {
		name   string
		cursor string
	}{
		{name: "empty", cursor: ""},
		{name: "not base64", cursor: "%%%"},
		{name: "wrong version", cursor: "djI6MTIzLWFiYw"},
		{name: "missing uuid", cursor: "djE6MTIzNDU"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := queries.DecodeAfterCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(0))
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(-5))
	assert.Equal(t, 25, queries.ValidateLimit(25))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(10_000))
}

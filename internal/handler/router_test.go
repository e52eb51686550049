//go:build unit

package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-booking-api/internal/handler"
	"salon-booking-api/internal/handler/api"
	"salon-booking-api/internal/handler/middleware"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/usecase/shared"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewTestConfig()
	policy, err := shared.NewSalonPolicy(cfg.Salon)
	require.NoError(t, err)

	engine := gin.New()
	handler.NewRouter(
		engine,
		cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		api.NewAuthHandler(nil, nil, cfg.Cookie, nil),
		api.NewCatalogHandler(nil, nil),
		api.NewAvailabilityHandler(nil, policy),
		api.NewBookingHandler(nil, nil),
		api.NewPaymentHandler(nil, nil),
		middleware.NewAuthMiddleware(nil),
	)
	return engine
}

func TestRegisteredRoutes(t *testing.T) {
	engine := newTestRouter(t)

	registered := make(map[string]bool)
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		http.MethodGet + " /health",
		http.MethodGet + " /metrics",
		http.MethodPost + " /api/auth/login",
		http.MethodGet + " /api/availability",
		http.MethodGet + " /api/availability/span",
		http.MethodGet + " /api/services",
		http.MethodGet + " /api/services/:id",
		http.MethodPost + " /api/services",
		http.MethodPut + " /api/services/:id",
		http.MethodDelete + " /api/services/:id",
		http.MethodPost + " /api/bookings",
		http.MethodPost + " /api/bookings/:id/cancel",
		http.MethodPost + " /api/payments/intent",
		http.MethodPost + " /api/payments/webhook",
		http.MethodGet + " /api/staff/bookings",
		http.MethodPatch + " /api/staff/bookings/:id/status",
		http.MethodGet + " /api/staff/services",
		http.MethodPost + " /api/staff/payments/:id/refund",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}

	assert.False(t, registered[http.MethodPost+" /api/staff/services"])
}

func TestCatalogWritesRequireSession(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/services", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

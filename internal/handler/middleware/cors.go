package middleware

import (
	"log/slog"
	"slices"

	"salon-booking-api/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware builds the CORS policy for the salon's website origin.
// Idempotency-Key is always allowed since booking creation requires it
// from the browser.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowHeaders := cfg.AllowHeaders
	if !slices.Contains(allowHeaders, "Idempotency-Key") {
		allowHeaders = append(slices.Clone(allowHeaders), "Idempotency-Key")
	}

	slog.Info("CORS policy configured", "allow_origins", cfg.AllowOrigins)
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

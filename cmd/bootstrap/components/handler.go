package components

import (
	"salon-booking-api/internal/handler"
	"salon-booking-api/internal/handler/api"
	"salon-booking-api/internal/handler/middleware"
	"salon-booking-api/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		func(cfg config.Config) config.CookieConfig {
			return cfg.Cookie
		},
		api.NewAuthHandler,
		api.NewCatalogHandler,
		api.NewAvailabilityHandler,
		api.NewBookingHandler,
		api.NewPaymentHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

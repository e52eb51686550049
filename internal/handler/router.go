package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"salon-booking-api/internal/domain/staff"
	"salon-booking-api/internal/handler/api"
	"salon-booking-api/internal/handler/middleware"
	"salon-booking-api/internal/metrics"
	"salon-booking-api/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *slog.Logger,
	authHandler *api.AuthHandler,
	catalogHandler *api.CatalogHandler,
	availabilityHandler *api.AvailabilityHandler,
	bookingHandler *api.BookingHandler,
	paymentHandler *api.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, authHandler, catalogHandler, availabilityHandler, bookingHandler, paymentHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger, cfg.Log))
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	catalogHandler *api.CatalogHandler,
	availabilityHandler *api.AvailabilityHandler,
	bookingHandler *api.BookingHandler,
	paymentHandler *api.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	metrics.Register()
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		// Catalog writes sit on the public path but require an admin session.
		adminWrite := []gin.HandlerFunc{
			authMiddleware.RequireAuth(),
			authMiddleware.RequireRoleAtLeast(staff.RoleAdmin),
		}
		addRoutes(apiGroup.Group("/services"), []route{
			{Method: http.MethodGet, Path: "", Handler: catalogHandler.ListServices},
			{Method: http.MethodGet, Path: "/:id", Handler: catalogHandler.GetService},
			{Method: http.MethodPost, Path: "", Handler: catalogHandler.CreateService, Mw: adminWrite},
			{Method: http.MethodPut, Path: "/:id", Handler: catalogHandler.UpdateService, Mw: adminWrite},
			{Method: http.MethodDelete, Path: "/:id", Handler: catalogHandler.DeactivateService, Mw: adminWrite},
		})

		addRoutes(apiGroup.Group("/availability"), []route{
			{Method: http.MethodGet, Path: "", Handler: availabilityHandler.GetDay},
			{Method: http.MethodGet, Path: "/span", Handler: availabilityHandler.GetSpan},
		})

		addRoutes(apiGroup.Group("/bookings"), []route{
			{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateBooking},
			{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListCustomerBookings},
			{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.CancelBooking},
			{Method: http.MethodPost, Path: "/:id/review", Handler: bookingHandler.SubmitReview},
		})

		addRoutes(apiGroup.Group("/payments"), []route{
			{Method: http.MethodPost, Path: "/intent", Handler: paymentHandler.CreateIntent},
			{Method: http.MethodPost, Path: "/confirm", Handler: paymentHandler.ConfirmPayment},
			{Method: http.MethodPost, Path: "/webhook", Handler: paymentHandler.Webhook},
		})

		staffGroup := apiGroup.Group("/staff")
		staffGroup.Use(authMiddleware.RequireAuth())
		{
			adminOnly := authMiddleware.RequireRoleAtLeast(staff.RoleAdmin)

			addRoutes(staffGroup.Group("/bookings"), []route{
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListBookings},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBookingAsStaff},
				{Method: http.MethodPatch, Path: "/:id/status", Handler: bookingHandler.UpdateStatus},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.CancelBookingAsStaff},
				{Method: http.MethodGet, Path: "/:id/payments", Handler: paymentHandler.ListBookingPayments},
			})

			addRoutes(staffGroup.Group("/payments"), []route{
				{Method: http.MethodGet, Path: "", Handler: paymentHandler.ListPayments},
				{Method: http.MethodGet, Path: "/:id", Handler: paymentHandler.GetPayment},
				{Method: http.MethodPost, Path: "/:id/refund", Handler: paymentHandler.RefundPayment, Mw: []gin.HandlerFunc{adminOnly}},
			})

			addRoutes(staffGroup.Group("/services"), []route{
				{Method: http.MethodGet, Path: "", Handler: catalogHandler.ListAllServices},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

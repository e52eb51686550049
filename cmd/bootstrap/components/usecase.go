package components

import (
	"salon-booking-api/internal/infra/stripepay"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/config"
	"salon-booking-api/internal/usecase"
	"salon-booking-api/internal/usecase/commands"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) (shared.SalonPolicy, error) {
		return shared.NewSalonPolicy(cfg.Salon)
	},
	fx.Annotate(
		func(cfg config.Config) *stripepay.Provider {
			return stripepay.NewProvider(cfg.Stripe)
		},
		fx.As(new(commands.PaymentProvider)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCatalogUseCase,
		commands.NewBookingUseCase,
		commands.NewPaymentUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewStaffQueries,
		queries.NewCatalogQueries,
		queries.NewAvailabilityQueries,
		queries.NewBookingQueries,
		queries.NewPaymentQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewAuthUseCase,
		usecase.NewTokenValidator,
	),
)

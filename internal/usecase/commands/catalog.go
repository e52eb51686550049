package commands

import (
	"context"

	"salon-booking-api/internal/domain/catalog"
	reqdto "salon-booking-api/internal/handler/dto/request"
	"salon-booking-api/internal/infra"
	"salon-booking-api/internal/pkg/clock"
	"salon-booking-api/internal/pkg/errs"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrServiceAlreadyExists = errs.New("a service with this name already exists")

type CatalogCommands interface {
	CreateService(ctx context.Context, req reqdto.CreateServiceRequest) (*queries.ServiceView, error)
	UpdateService(ctx context.Context, id uuid.UUID, req reqdto.UpdateServiceRequest) (*queries.ServiceView, error)
	// DeactivateService hides the service from the catalog. Existing bookings
	// keep their snapshotted price and duration.
	DeactivateService(ctx context.Context, id uuid.UUID) error
}

type catalogUseCaseImpl struct {
	uow            shared.UnitOfWork
	catalogQueries queries.CatalogQueries
	clock          clock.Clock
}

func NewCatalogUseCase(uow shared.UnitOfWork, catalogQueries queries.CatalogQueries, clock clock.Clock) CatalogCommands {
	return &catalogUseCaseImpl{
		uow:            uow,
		catalogQueries: catalogQueries,
		clock:          clock,
	}
}

func (u *catalogUseCaseImpl) CreateService(ctx context.Context, req reqdto.CreateServiceRequest) (*queries.ServiceView, error) {
	category, err := catalog.NewCategory(req.Category)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	entity, err := catalog.NewService(req.Name, req.Description, category, req.PriceCents, req.DurationMinutes, u.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Services().Create(ctx, entity); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrServiceAlreadyExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.catalogQueries.GetByID(ctx, entity.ID())
}

func (u *catalogUseCaseImpl) UpdateService(ctx context.Context, id uuid.UUID, req reqdto.UpdateServiceRequest) (*queries.ServiceView, error) {
	category, err := catalog.NewCategory(req.Category)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Services().FindByIDForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrServiceNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := entity.Update(req.Name, req.Description, category, req.PriceCents, req.DurationMinutes, u.clock.Now()); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		if err := tx.Services().Update(ctx, entity); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrServiceAlreadyExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.catalogQueries.GetByID(ctx, id)
}

func (u *catalogUseCaseImpl) DeactivateService(ctx context.Context, id uuid.UUID) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Services().FindByIDForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrServiceNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		entity.Deactivate(u.clock.Now())
		return tx.Services().Update(ctx, entity)
	})
}

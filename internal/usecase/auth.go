package usecase

import (
	"context"

	"salon-booking-api/internal/domain/staff"
	"salon-booking-api/internal/pkg/errs"
	"salon-booking-api/internal/pkg/jwt"
	"salon-booking-api/internal/pkg/password"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"
)

var (
	ErrInvalidCredentials   = errs.New("invalid email or password")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type AuthUseCase interface {
	Login(ctx context.Context, credentials staff.Credentials) (string, *queries.StaffView, error)
}

type authUseCaseImpl struct {
	staffStore queries.StaffReadStore
	uow        shared.UnitOfWork
	jwtService *jwt.Service
}

func NewAuthUseCase(staffStore queries.StaffReadStore, uow shared.UnitOfWork, jwtService *jwt.Service) AuthUseCase {
	return &authUseCaseImpl{
		staffStore: staffStore,
		uow:        uow,
		jwtService: jwtService,
	}
}

func (a *authUseCaseImpl) Login(ctx context.Context, credentials staff.Credentials) (string, *queries.StaffView, error) {
	view, hashedPassword, err := a.staffStore.FindByEmail(ctx, credentials.Email().Value())
	if err != nil {
		// A missing account and a wrong password look the same to the caller.
		return "", nil, ErrInvalidCredentials
	}

	if err := password.Compare(hashedPassword, credentials.Password().Value()); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	role, err := staff.NewRole(view.Role)
	if err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := a.jwtService.GenerateToken(view.ID, role)
	if err != nil {
		return "", nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Staff().UpdateLastLogin(ctx, view.ID)
	})
	if err != nil {
		return "", nil, err
	}

	return token, view, nil
}

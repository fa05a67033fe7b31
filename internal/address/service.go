package address

import (
	"context"
	"strings"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]*Address, error)
	Get(ctx context.Context, addressID uuid.UUID) (*Address, error)

	Create(ctx context.Context, input CreateAddressInput) (*Address, error)
	Delete(ctx context.Context, addressID uuid.UUID) error

	SetDefaultAddress(ctx context.Context, addressID uuid.UUID) error

	// GetOwned returns ErrAddressNotFound unless the address is active and
	// belongs to userID.
	GetOwned(ctx context.Context, userID uint, addressID uuid.UUID) (*Address, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(
	ctx context.Context,
) ([]*Address, error) {

	userID, ok := auth.UserIDFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	logger.FromCtx(ctx).Debug("listing addresses",
		zap.String("service", "Address"),
		zap.Uint("user_id", userID),
	)

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Get(
	ctx context.Context,
	addressID uuid.UUID,
) (*Address, error) {

	userID, ok := auth.UserIDFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	return s.GetOwned(ctx, userID, addressID)
}

func (s *service) GetOwned(
	ctx context.Context,
	userID uint,
	addressID uuid.UUID,
) (*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "GetOwned"),
		zap.String("address_id", addressID.String()),
	)

	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}

	if addr.UserID != userID || !addr.IsActive {
		log.Warn("unauthorized address access", zap.Uint("user_id", userID))
		return nil, ErrAddressNotFound
	}

	return addr, nil
}

func validate(input CreateAddressInput) error {
	for _, v := range []string{
		input.Name, input.Phone, input.AddressLine1,
		input.City, input.PostalCode, input.Country,
	} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidAddressData
		}
	}
	return nil
}

func (s *service) Create(
	ctx context.Context,
	input CreateAddressInput,
) (*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Create"),
	)

	userID, ok := auth.UserIDFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	if err := validate(input); err != nil {
		return nil, err
	}

	addr := &Address{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Address1:  input.AddressLine1,
		Address2:  input.AddressLine2,
		City:      input.City,
		Province:  input.Province,
		Postal:    input.PostalCode,
		Country:   input.Country,
		IsActive:  true,
		IsDefault: input.SetAsDefault,
	}

	if err := s.repo.Create(ctx, addr); err != nil {
		log.Error("failed to create address", zap.Error(err))
		return nil, err
	}

	log.Info("address created", zap.String("address_id", addr.ID.String()))
	return addr, nil
}

func (s *service) Delete(
	ctx context.Context,
	addressID uuid.UUID,
) error {

	userID, ok := auth.UserIDFrom(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	if _, err := s.GetOwned(ctx, userID, addressID); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("address deleted",
		zap.String("address_id", addressID.String()),
		zap.Uint("user_id", userID),
	)

	return s.repo.Deactivate(ctx, addressID)
}

func (s *service) SetDefaultAddress(
	ctx context.Context,
	addressID uuid.UUID,
) error {
	userID, ok := auth.UserIDFrom(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "SetDefaultAddress"),
		zap.String("address_id", addressID.String()),
		zap.Uint("user_id", userID),
	)

	if err := s.repo.SetDefault(ctx, userID, addressID); err != nil {
		log.Warn("failed to set default address", zap.Error(err))
		return err
	}

	log.Info("default address set")
	return nil
}

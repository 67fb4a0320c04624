package shipping

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
)

// Service exposes shipping eligibility to controllers and checkout.
type Service interface {
	Options(ctx context.Context, subtotal decimal.Decimal) ([]models.ShippingMethod, error)
	Resolve(ctx context.Context, methodID *uuid.UUID, subtotal decimal.Decimal) (models.ShippingMethod, error)
}

type service struct {
	repo Repository
}

// NewService builds the shipping service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	return &service{repo: repo}, nil
}

// Options returns the eligible methods for the given cart subtotal,
// pickup first.
func (s *service) Options(ctx context.Context, subtotal decimal.Decimal) ([]models.ShippingMethod, error) {
	methods, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing shipping methods")
	}
	return Eligible(methods, subtotal), nil
}

// Resolve validates a client-selected method against the subtotal. A
// nil method ID means pickup.
func (s *service) Resolve(ctx context.Context, methodID *uuid.UUID, subtotal decimal.Decimal) (models.ShippingMethod, error) {
	if methodID == nil || *methodID == uuid.Nil {
		return Pickup(), nil
	}

	method, err := s.repo.FindByID(ctx, *methodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ShippingMethod{}, pkgerrors.New(pkgerrors.CodeNotFound, "shipping method not found")
		}
		return models.ShippingMethod{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading shipping method")
	}
	if !method.IsActive {
		return models.ShippingMethod{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping method is no longer available")
	}
	if !methodEligible(*method, subtotal) {
		return models.ShippingMethod{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping method is not eligible for this order total")
	}
	return *method, nil
}

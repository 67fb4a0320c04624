package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
)

// GatewayRepository reads the admin-configured payment_gateways rows.
type GatewayRepository interface {
	ListActive(ctx context.Context) ([]models.PaymentGateway, error)
	FindByType(ctx context.Context, gatewayType enums.GatewayType) (*models.PaymentGateway, error)
}

type gatewayRepository struct {
	db *gorm.DB
}

// NewGatewayRepository builds a gateway repository bound to the provided DB.
func NewGatewayRepository(db *gorm.DB) GatewayRepository {
	return &gatewayRepository{db: db}
}

func (r *gatewayRepository) ListActive(ctx context.Context) ([]models.PaymentGateway, error) {
	var gateways []models.PaymentGateway
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC").
		Find(&gateways).Error
	if err != nil {
		return nil, err
	}
	return gateways, nil
}

func (r *gatewayRepository) FindByType(ctx context.Context, gatewayType enums.GatewayType) (*models.PaymentGateway, error) {
	var gateway models.PaymentGateway
	err := r.db.WithContext(ctx).
		Where("gateway_type = ?", gatewayType).
		First(&gateway).Error
	if err != nil {
		return nil, err
	}
	return &gateway, nil
}

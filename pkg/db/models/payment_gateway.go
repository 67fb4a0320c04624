package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmarowa/zimcart-backend/pkg/enums"
)

// PaymentGateway is an admin-configured payment provider. The checkout
// core treats these rows as read-only.
type PaymentGateway struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GatewayType         enums.GatewayType `gorm:"column:gateway_type;type:text;not null;uniqueIndex"`
	DisplayName         string            `gorm:"column:display_name;not null"`
	IsActive            bool              `gorm:"column:is_active;not null;default:true"`
	Configuration       map[string]string `gorm:"column:configuration;type:jsonb;serializer:json"`
	SupportedCurrencies []string          `gorm:"column:supported_currencies;type:jsonb;serializer:json"`
	Position            int               `gorm:"column:position;not null;default:0"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the collection name consumed by the query layer.
func (PaymentGateway) TableName() string {
	return "payment_gateways"
}

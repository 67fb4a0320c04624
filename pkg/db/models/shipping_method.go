package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingMethod is a courier option configured by the admin back-office.
// The synthetic pickup method is never stored here; the shipping service
// injects it at read time.
type ShippingMethod struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	BaseCost        decimal.Decimal  `gorm:"column:base_cost;type:numeric(12,2);not null"`
	DeliveryDaysMin int              `gorm:"column:delivery_days_min;not null;default:1"`
	DeliveryDaysMax int              `gorm:"column:delivery_days_max;not null;default:7"`
	MinOrderTotal   *decimal.Decimal `gorm:"column:min_order_total;type:numeric(12,2)"`
	MaxOrderTotal   *decimal.Decimal `gorm:"column:max_order_total;type:numeric(12,2)"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	Position        int              `gorm:"column:position;not null;default:0"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the collection name consumed by the query layer.
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

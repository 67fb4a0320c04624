package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/pkg/enums"
	"github.com/tmarowa/zimcart-backend/pkg/types"
)

// Order is the per-vendor order produced from one checkout submission.
// A submission spanning N vendors creates N orders sharing one
// CheckoutBatchID; money on each order covers only that vendor's lines
// plus its even share of the selected shipping cost.
type Order struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      string                  `gorm:"column:order_number;not null;uniqueIndex"`
	CheckoutBatchID  uuid.UUID               `gorm:"column:checkout_batch_id;type:uuid;not null;index"`
	CustomerID       uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	VendorID         uuid.UUID               `gorm:"column:vendor_id;type:uuid;not null;index"`
	Status           enums.OrderStatus       `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus    enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod    enums.GatewayType       `gorm:"column:payment_method;type:text;not null"`
	PaymentSubMethod *enums.PaymentSubMethod `gorm:"column:payment_sub_method;type:text"`
	ShippingMethodID *uuid.UUID              `gorm:"column:shipping_method_id;type:uuid"`
	ShippingAddress  types.Address           `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Currency         enums.Currency          `gorm:"column:currency;type:text;not null;default:'USD'"`
	Subtotal         decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxTotal         decimal.Decimal         `gorm:"column:tax_total;type:numeric(12,2);not null"`
	ShippingTotal    decimal.Decimal         `gorm:"column:shipping_total;type:numeric(12,2);not null"`
	Total            decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null"`
	CommissionAmount decimal.Decimal         `gorm:"column:commission_amount;type:numeric(12,2);not null"`
	Items            []OrderItem             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the collection name consumed by the query layer.
func (Order) TableName() string {
	return "orders"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/pkg/enums"
)

// PaymentTransaction is the audit trail of every gateway dispatch. One
// row is written per non-cash order attempt; the amount always equals
// that single order's total, never the cart grand total.
type PaymentTransaction struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	GatewayType enums.GatewayType       `gorm:"column:gateway_type;type:text;not null"`
	SubMethod   *enums.PaymentSubMethod `gorm:"column:sub_method;type:text"`
	Amount      decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency    enums.Currency          `gorm:"column:currency;type:text;not null;default:'USD'"`
	Reference   *string                 `gorm:"column:reference"`
	Outcome     enums.PaymentOutcome    `gorm:"column:outcome;type:text;not null"`
	Error       *string                 `gorm:"column:error"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the collection name consumed by the query layer.
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

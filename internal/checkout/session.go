package checkout

import (
	"github.com/google/uuid"

	"github.com/tmarowa/zimcart-backend/internal/cart"
	"github.com/tmarowa/zimcart-backend/internal/identity"
	"github.com/tmarowa/zimcart-backend/internal/payments"
	"github.com/tmarowa/zimcart-backend/internal/shipping"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	"github.com/tmarowa/zimcart-backend/pkg/types"
)

// Session is the complete checkout submission as a value object. The
// transport layer produces it; the orchestrator only reads it.
type Session struct {
	User             *identity.Session
	Contact          identity.Contact
	Address          types.Address
	Lines            []cart.CartLine
	ShippingMethodID *uuid.UUID
	Payment          payments.MethodSelection
	Form             payments.FormDetails
}

// DefaultShipping picks the initial shipping selection for a fresh
// session: the first eligible courier, or pickup when none qualify.
// Called once at session construction and again on cart changes, never
// as an ambient side effect.
func DefaultShipping(eligible []models.ShippingMethod) *uuid.UUID {
	for _, method := range eligible {
		if !shipping.IsPickup(method) {
			id := method.ID
			return &id
		}
	}
	return nil
}

// DefaultPayment picks the initial payment selection: the first active
// gateway by position. Composite gateways default to their card
// sub-method.
func DefaultPayment(gateways []models.PaymentGateway) payments.MethodSelection {
	for _, gateway := range gateways {
		if !gateway.IsActive {
			continue
		}
		selection := payments.MethodSelection{Gateway: gateway.GatewayType}
		if gateway.GatewayType == enums.GatewayTypeIveri {
			sub := enums.PaymentSubMethodCard
			selection.SubMethod = &sub
		}
		return selection
	}
	return payments.MethodSelection{Gateway: enums.GatewayTypeCash}
}

package shipping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/pkg/db/models"
)

// PickupName labels the synthetic free pickup option.
const PickupName = "Store Pickup"

// Pickup returns the synthetic pickup method. It is never persisted;
// the nil UUID marks it so downstream code can recognize the selection.
func Pickup() models.ShippingMethod {
	return models.ShippingMethod{
		ID:       uuid.Nil,
		Name:     PickupName,
		BaseCost: decimal.Zero,
	}
}

// IsPickup reports whether the method is the synthetic pickup option.
func IsPickup(method models.ShippingMethod) bool {
	return method.ID == uuid.Nil
}

// Eligible filters the stored methods against the cart subtotal and
// prepends the pickup option, which is always eligible. Storage order
// is preserved for the rest.
func Eligible(methods []models.ShippingMethod, subtotal decimal.Decimal) []models.ShippingMethod {
	out := make([]models.ShippingMethod, 0, len(methods)+1)
	out = append(out, Pickup())
	for _, m := range methods {
		if IsPickup(m) {
			continue
		}
		if methodEligible(m, subtotal) {
			out = append(out, m)
		}
	}
	return out
}

func methodEligible(m models.ShippingMethod, subtotal decimal.Decimal) bool {
	if m.MinOrderTotal != nil && subtotal.LessThan(*m.MinOrderTotal) {
		return false
	}
	if m.MaxOrderTotal != nil && subtotal.GreaterThan(*m.MaxOrderTotal) {
		return false
	}
	return true
}

// Reselect resolves the active selection after eligibility changes. A
// still-eligible current selection is kept. Otherwise the first
// eligible courier wins, falling back to pickup when no courier fits.
func Reselect(current *models.ShippingMethod, eligible []models.ShippingMethod) models.ShippingMethod {
	if current != nil {
		for _, m := range eligible {
			if m.ID == current.ID {
				return m
			}
		}
	}
	for _, m := range eligible {
		if !IsPickup(m) {
			return m
		}
	}
	return Pickup()
}

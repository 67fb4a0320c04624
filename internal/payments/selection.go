package payments

import (
	"strings"

	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
)

// MethodSelection is the tagged form of a customer's payment choice.
// Compound identifiers like "iveri_card" exist only on the wire; inside
// the core the gateway and optional sub-method travel separately.
type MethodSelection struct {
	Gateway   enums.GatewayType
	SubMethod *enums.PaymentSubMethod
}

// ParseSelection converts a wire identifier ("paynow", "iveri_card",
// "iveri_ecocash") into a MethodSelection. Only the API boundary should
// call this.
func ParseSelection(value string) (MethodSelection, error) {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" {
		return MethodSelection{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	if gateway, err := enums.ParseGatewayType(raw); err == nil {
		selection := MethodSelection{Gateway: gateway}
		if err := selection.Validate(); err != nil {
			return MethodSelection{}, err
		}
		return selection, nil
	}

	base, suffix, found := strings.Cut(raw, "_")
	if !found {
		return MethodSelection{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").WithDetails(value)
	}
	gateway, err := enums.ParseGatewayType(base)
	if err != nil {
		return MethodSelection{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").WithDetails(value)
	}
	sub, err := enums.ParsePaymentSubMethod(suffix)
	if err != nil {
		return MethodSelection{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment sub-method").WithDetails(value)
	}
	selection := MethodSelection{Gateway: gateway, SubMethod: &sub}
	if err := selection.Validate(); err != nil {
		return MethodSelection{}, err
	}
	return selection, nil
}

// Wire renders the selection back into its compound wire identifier.
func (m MethodSelection) Wire() string {
	if m.SubMethod == nil {
		return string(m.Gateway)
	}
	return string(m.Gateway) + "_" + string(*m.SubMethod)
}

// Validate checks the combination is one the platform can dispatch.
func (m MethodSelection) Validate() error {
	if !m.Gateway.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if m.SubMethod != nil {
		if !m.SubMethod.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment sub-method")
		}
		if m.Gateway != enums.GatewayTypeIveri {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment sub-methods are only supported on iveri")
		}
	}
	if m.Gateway == enums.GatewayTypeIveri && m.SubMethod == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "iveri requires a card or ecocash sub-method")
	}
	return nil
}

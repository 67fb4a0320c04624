package enums

import "fmt"

// PaymentSubMethod is a second-level payment option nested under one
// gateway. Today only Iveri is composite, splitting into card and
// EcoCash wallet charges.
type PaymentSubMethod string

const (
	PaymentSubMethodCard    PaymentSubMethod = "card"
	PaymentSubMethodEcocash PaymentSubMethod = "ecocash"
)

var validPaymentSubMethods = []PaymentSubMethod{
	PaymentSubMethodCard,
	PaymentSubMethodEcocash,
}

// String implements fmt.Stringer.
func (p PaymentSubMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentSubMethod.
func (p PaymentSubMethod) IsValid() bool {
	for _, candidate := range validPaymentSubMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentSubMethod converts raw input into a PaymentSubMethod.
func ParsePaymentSubMethod(value string) (PaymentSubMethod, error) {
	for _, candidate := range validPaymentSubMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment sub-method %q", value)
}

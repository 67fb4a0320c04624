package enums

import "fmt"

// GatewayType identifies a configured payment gateway.
type GatewayType string

const (
	GatewayTypePaynow GatewayType = "paynow"
	GatewayTypeIveri  GatewayType = "iveri"
	GatewayTypePayPal GatewayType = "paypal"
	GatewayTypeStripe GatewayType = "stripe"
	GatewayTypeCash   GatewayType = "cash"
	GatewayTypeManual GatewayType = "manual"
)

var validGatewayTypes = []GatewayType{
	GatewayTypePaynow,
	GatewayTypeIveri,
	GatewayTypePayPal,
	GatewayTypeStripe,
	GatewayTypeCash,
	GatewayTypeManual,
}

// String implements fmt.Stringer.
func (g GatewayType) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GatewayType.
func (g GatewayType) IsValid() bool {
	for _, candidate := range validGatewayTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// IsOffline reports whether the gateway settles without a network call.
func (g GatewayType) IsOffline() bool {
	return g == GatewayTypeCash || g == GatewayTypeManual
}

// ParseGatewayType converts raw input into a GatewayType.
func ParseGatewayType(value string) (GatewayType, error) {
	for _, candidate := range validGatewayTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway type %q", value)
}

package payments

import (
	"context"
	"time"

	"github.com/tmarowa/zimcart-backend/pkg/config"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
)

// Gateway-row Configuration keys an admin can set to override the
// deployment defaults for the mobile-money virtual PAN.
const (
	configKeyEcocashPANPrefix = "ecocash_pan_prefix"
	configKeyEcocashExpiry    = "ecocash_expiry"
)

// FormDetails is the raw payment form input collected at checkout.
// At most one member is set, matching the selected sub-method.
type FormDetails struct {
	Card    *CardDetails
	Ecocash *EcocashDetails
}

// ChargeInput is everything an adapter needs to dispatch one order's
// payment.
type ChargeInput struct {
	Gateway   models.PaymentGateway
	Order     models.Order
	Form      FormDetails
	ReturnURL string
	Now       time.Time
}

// Adapter builds gateway-specific request metadata and invokes the
// gateway. Metadata conventions (virtual PANs, fixed expiries) live
// here so no other gateway is forced into the same shape.
type Adapter interface {
	Charge(ctx context.Context, in ChargeInput) (*PaymentResult, error)
}

// Registry maps gateway types to their adapters. Offline gateways
// (cash, manual) never reach the registry.
type Registry struct {
	adapters map[enums.GatewayType]Adapter
}

// NewRegistry wires an adapter for every online gateway.
func NewRegistry(cfg config.GatewaysConfig, client *Client) *Registry {
	return &Registry{
		adapters: map[enums.GatewayType]Adapter{
			enums.GatewayTypePaynow: &hostedAdapter{
				client:  client,
				baseURL: cfg.Paynow.BaseURL,
				apiKey:  cfg.Paynow.IntegrationKey,
			},
			enums.GatewayTypeIveri: &iveriAdapter{
				client:        client,
				baseURL:       cfg.Iveri.BaseURL,
				apiKey:        cfg.Iveri.APIKey,
				ecocashPrefix: cfg.Iveri.EcocashPANPrefix,
				ecocashExpiry: cfg.Iveri.EcocashExpiry,
			},
			enums.GatewayTypePayPal: &hostedAdapter{
				client:  client,
				baseURL: cfg.PayPal.BaseURL,
				apiKey:  cfg.PayPal.APIKey,
			},
			enums.GatewayTypeStripe: &hostedAdapter{
				client:  client,
				baseURL: cfg.Stripe.BaseURL,
				apiKey:  cfg.Stripe.APIKey,
			},
		},
	}
}

// Resolve returns the adapter for an online gateway type.
func (r *Registry) Resolve(gateway enums.GatewayType) (Adapter, error) {
	adapter, ok := r.adapters[gateway]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is not available").WithDetails(gateway.String())
	}
	return adapter, nil
}

// hostedAdapter covers gateways that run their own capture page
// (paynow, paypal, stripe). No card details cross our process; the
// gateway answers with either success or a redirect URL.
type hostedAdapter struct {
	client  *Client
	baseURL string
	apiKey  string
}

func (a *hostedAdapter) Charge(ctx context.Context, in ChargeInput) (*PaymentResult, error) {
	return a.client.Charge(ctx, a.baseURL, a.apiKey, buildRequest(in, nil))
}

// iveriAdapter charges through Iveri, which is split into a card
// sub-method and an Ecocash mobile-money sub-method. Ecocash wallets
// are addressed as a virtual PAN: a fixed numeric prefix followed by
// the cleaned subscriber digits, with a fixed far-future expiry.
type iveriAdapter struct {
	client        *Client
	baseURL       string
	apiKey        string
	ecocashPrefix string
	ecocashExpiry string
}

func (a *iveriAdapter) Charge(ctx context.Context, in ChargeInput) (*PaymentResult, error) {
	metadata, err := a.buildMetadata(in)
	if err != nil {
		return nil, err
	}
	return a.client.Charge(ctx, a.baseURL, a.apiKey, buildRequest(in, metadata))
}

func (a *iveriAdapter) buildMetadata(in ChargeInput) (map[string]string, error) {
	if in.Order.PaymentSubMethod == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "iveri requires a card or ecocash sub-method")
	}

	switch *in.Order.PaymentSubMethod {
	case enums.PaymentSubMethodCard:
		if in.Form.Card == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "card details are required")
		}
		card, err := ValidateCard(*in.Form.Card, in.Now)
		if err != nil {
			return nil, err
		}
		metadata := map[string]string{
			"card_pan":    card.PAN,
			"card_expiry": card.Expiry,
			"card_cvv":    card.CVV,
		}
		if card.HolderName != "" {
			metadata["card_holder"] = card.HolderName
		}
		return metadata, nil

	case enums.PaymentSubMethodEcocash:
		if in.Form.Ecocash == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile money number is required")
		}
		digits, err := CleanEcocashNumber(in.Form.Ecocash.PhoneNumber)
		if err != nil {
			return nil, err
		}
		prefix := configValue(in.Gateway.Configuration, configKeyEcocashPANPrefix, a.ecocashPrefix)
		expiry := configValue(in.Gateway.Configuration, configKeyEcocashExpiry, a.ecocashExpiry)
		return map[string]string{
			"card_pan":    prefix + digits,
			"card_expiry": expiry,
			"channel":     "ecocash",
		}, nil

	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment sub-method").WithDetails(in.Order.PaymentSubMethod.String())
	}
}

func buildRequest(in ChargeInput, metadata map[string]string) PaymentRequest {
	selection := MethodSelection{
		Gateway:   in.Order.PaymentMethod,
		SubMethod: in.Order.PaymentSubMethod,
	}
	return PaymentRequest{
		OrderID:     in.Order.ID,
		GatewayType: selection.Wire(),
		Amount:      in.Order.Total,
		Currency:    in.Order.Currency,
		ReturnURL:   in.ReturnURL,
		Metadata:    metadata,
	}
}

func configValue(configuration map[string]string, key, fallback string) string {
	if value, ok := configuration[key]; ok && value != "" {
		return value
	}
	return fallback
}

package controllers

import (
	"net/http"

	"github.com/tmarowa/zimcart-backend/api/responses"
	"github.com/tmarowa/zimcart-backend/internal/payments"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
)

type paymentMethodOption struct {
	Method      string `json:"method"`
	DisplayName string `json:"display_name"`
}

// PaymentMethods lists the selectable payment options in admin-defined
// order. Composite gateways fan out into one wire entry per sub-method.
func PaymentMethods(repo payments.GatewayRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway repository unavailable"))
			return
		}

		gateways, err := repo.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payment gateways"))
			return
		}

		options := make([]paymentMethodOption, 0, len(gateways)+1)
		for _, gateway := range gateways {
			if gateway.GatewayType == enums.GatewayTypeIveri {
				card := enums.PaymentSubMethodCard
				ecocash := enums.PaymentSubMethodEcocash
				options = append(options,
					paymentMethodOption{
						Method:      payments.MethodSelection{Gateway: gateway.GatewayType, SubMethod: &card}.Wire(),
						DisplayName: gateway.DisplayName + " Card",
					},
					paymentMethodOption{
						Method:      payments.MethodSelection{Gateway: gateway.GatewayType, SubMethod: &ecocash}.Wire(),
						DisplayName: gateway.DisplayName + " EcoCash",
					},
				)
				continue
			}
			options = append(options, paymentMethodOption{
				Method:      payments.MethodSelection{Gateway: gateway.GatewayType}.Wire(),
				DisplayName: gateway.DisplayName,
			})
		}

		responses.WriteSuccess(w, options)
	}
}

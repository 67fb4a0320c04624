package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/api/responses"
	"github.com/tmarowa/zimcart-backend/internal/shipping"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
)

type shippingMethodResponse struct {
	ID              *uuid.UUID      `json:"id"`
	Name            string          `json:"name"`
	BaseCost        decimal.Decimal `json:"base_cost"`
	DeliveryDaysMin int             `json:"delivery_days_min,omitempty"`
	DeliveryDaysMax int             `json:"delivery_days_max,omitempty"`
	IsPickup        bool            `json:"is_pickup"`
}

// ShippingMethods lists the options eligible for the given cart
// subtotal, pickup first. Pickup carries a null id; selecting it means
// submitting checkout without a shipping_method_id.
func ShippingMethods(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		subtotal := decimal.Zero
		if raw := strings.TrimSpace(r.URL.Query().Get("subtotal")); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil || parsed.IsNegative() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be a non-negative amount"))
				return
			}
			subtotal = parsed
		}

		methods, err := svc.Options(r.Context(), subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]shippingMethodResponse, 0, len(methods))
		for _, method := range methods {
			out = append(out, newShippingMethodResponse(method))
		}
		responses.WriteSuccess(w, out)
	}
}

func newShippingMethodResponse(method models.ShippingMethod) shippingMethodResponse {
	resp := shippingMethodResponse{
		Name:            method.Name,
		BaseCost:        method.BaseCost,
		DeliveryDaysMin: method.DeliveryDaysMin,
		DeliveryDaysMax: method.DeliveryDaysMax,
		IsPickup:        shipping.IsPickup(method),
	}
	if !resp.IsPickup {
		id := method.ID
		resp.ID = &id
	}
	return resp
}

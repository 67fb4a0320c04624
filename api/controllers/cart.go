package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/api/responses"
	"github.com/tmarowa/zimcart-backend/api/validators"
	"github.com/tmarowa/zimcart-backend/internal/cart"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
)

type cartLineDTO struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	VendorID    uuid.UUID       `json:"vendor_id" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
}

type cartSaveRequest struct {
	Items []cartLineDTO `json:"items" validate:"dive"`
}

type cartResponse struct {
	Items    []cartLineDTO   `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartFetch returns the signed-in customer's saved cart.
func CartFetch(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := store.Load(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

// CartSave replaces the signed-in customer's saved cart.
func CartSave(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartSaveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]cart.CartLine, 0, len(body.Items))
		for _, item := range body.Items {
			lines = append(lines, cart.CartLine{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				VendorID:    item.VendorID,
				UnitPrice:   item.UnitPrice,
				Quantity:    item.Quantity,
			})
		}

		if err := store.Save(r.Context(), customerID, lines); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

func newCartResponse(lines []cart.CartLine) cartResponse {
	items := make([]cartLineDTO, 0, len(lines))
	for _, line := range lines {
		items = append(items, cartLineDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			VendorID:    line.VendorID,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	return cartResponse{Items: items, Subtotal: cart.Subtotal(lines)}
}

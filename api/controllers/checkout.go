package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/api/middleware"
	"github.com/tmarowa/zimcart-backend/api/responses"
	"github.com/tmarowa/zimcart-backend/api/validators"
	"github.com/tmarowa/zimcart-backend/internal/cart"
	checkoutsvc "github.com/tmarowa/zimcart-backend/internal/checkout"
	"github.com/tmarowa/zimcart-backend/internal/identity"
	"github.com/tmarowa/zimcart-backend/internal/payments"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
	"github.com/tmarowa/zimcart-backend/pkg/types"
)

// cartLoader fetches the server-side cart for signed-in customers who
// submit without inline items.
type cartLoader interface {
	Load(ctx context.Context, userID uuid.UUID) ([]cart.CartLine, error)
}

// Checkout submits the cart and dispatches payment for every vendor leg.
func Checkout(svc checkoutsvc.Service, carts cartLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := buildSession(r, carts, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), *session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(payload.Contact.Email, result))
	}
}

type checkoutContact struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName string  `json:"full_name" validate:"required"`
	Phone    *string `json:"phone" validate:"required"`
}

type checkoutAddress struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type checkoutItem struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	VendorID    uuid.UUID       `json:"vendor_id" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
}

type checkoutCard struct {
	Number     string `json:"number" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
	HolderName string `json:"holder_name,omitempty"`
}

type checkoutEcocash struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type checkoutRequest struct {
	Contact          checkoutContact  `json:"contact" validate:"required"`
	Address          checkoutAddress  `json:"address"`
	Items            []checkoutItem   `json:"items" validate:"dive"`
	ShippingMethodID *uuid.UUID       `json:"shipping_method_id"`
	PaymentMethod    string           `json:"payment_method" validate:"required"`
	Card             *checkoutCard    `json:"card,omitempty"`
	Ecocash          *checkoutEcocash `json:"ecocash,omitempty"`
}

type checkoutOrderItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type checkoutOrder struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	VendorID      uuid.UUID           `json:"vendor_id"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Currency      string              `json:"currency"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	TaxTotal      decimal.Decimal     `json:"tax_total"`
	ShippingTotal decimal.Decimal     `json:"shipping_total"`
	Total         decimal.Decimal     `json:"total"`
	Items         []checkoutOrderItem `json:"items"`
}

type guestAccountResponse struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type checkoutResponse struct {
	CheckoutBatchID uuid.UUID             `json:"checkout_batch_id"`
	Orders          []checkoutOrder       `json:"orders"`
	RedirectURL     string                `json:"redirect_url,omitempty"`
	GuestAccount    *guestAccountResponse `json:"guest_account,omitempty"`
}

func buildSession(r *http.Request, carts cartLoader, payload checkoutRequest) (*checkoutsvc.Session, error) {
	selection, err := payments.ParseSelection(payload.PaymentMethod)
	if err != nil {
		return nil, err
	}

	session := &checkoutsvc.Session{
		Contact: identity.Contact{
			Email:    payload.Contact.Email,
			FullName: payload.Contact.FullName,
			Phone:    payload.Contact.Phone,
		},
		Address: types.Address{
			FullName:   payload.Address.FullName,
			Phone:      payload.Address.Phone,
			Street:     payload.Address.Street,
			City:       payload.Address.City,
			State:      payload.Address.State,
			PostalCode: payload.Address.PostalCode,
			Country:    payload.Address.Country,
		},
		ShippingMethodID: payload.ShippingMethodID,
		Payment:          selection,
	}

	if payload.Card != nil {
		session.Form.Card = &payments.CardDetails{
			Number:     payload.Card.Number,
			Expiry:     payload.Card.Expiry,
			CVV:        payload.Card.CVV,
			HolderName: payload.Card.HolderName,
		}
	}
	if payload.Ecocash != nil {
		session.Form.Ecocash = &payments.EcocashDetails{
			PhoneNumber: payload.Ecocash.PhoneNumber,
		}
	}

	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session user")
		}
		role, _ := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
		session.User = &identity.Session{UserID: parsed, Role: role}
	}

	session.Lines = make([]cart.CartLine, 0, len(payload.Items))
	for _, item := range payload.Items {
		session.Lines = append(session.Lines, cart.CartLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			VendorID:    item.VendorID,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	// Signed-in customers may submit an empty body and check out the
	// cart saved server-side.
	if len(session.Lines) == 0 && session.User != nil && carts != nil {
		lines, err := carts.Load(r.Context(), session.User.UserID)
		if err != nil {
			return nil, err
		}
		session.Lines = lines
	}

	return session, nil
}

func newCheckoutResponse(contactEmail string, result *checkoutsvc.Result) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}

	orders := make([]checkoutOrder, 0, len(result.Orders))
	for _, order := range result.Orders {
		orders = append(orders, newCheckoutOrder(order))
	}

	resp := checkoutResponse{
		CheckoutBatchID: result.BatchID,
		Orders:          orders,
		RedirectURL:     result.RedirectURL,
	}
	if result.GuestCreated && result.GuestPassword != "" {
		resp.GuestAccount = &guestAccountResponse{
			Email:    contactEmail,
			Password: result.GuestPassword,
		}
	}
	return resp
}

func newCheckoutOrder(order models.Order) checkoutOrder {
	items := make([]checkoutOrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, checkoutOrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return checkoutOrder{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		VendorID:      order.VendorID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Currency:      string(order.Currency),
		Subtotal:      order.Subtotal,
		TaxTotal:      order.TaxTotal,
		ShippingTotal: order.ShippingTotal,
		Total:         order.Total,
		Items:         items,
	}
}

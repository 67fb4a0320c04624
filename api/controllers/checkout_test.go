package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/api/middleware"
	"github.com/tmarowa/zimcart-backend/internal/cart"
	checkoutsvc "github.com/tmarowa/zimcart-backend/internal/checkout"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
)

type stubCheckoutService struct {
	session *checkoutsvc.Session
	result  *checkoutsvc.Result
	err     error
}

func (s *stubCheckoutService) Checkout(_ context.Context, session checkoutsvc.Session) (*checkoutsvc.Result, error) {
	s.session = &session
	return s.result, s.err
}

type stubCartLoader struct {
	lines  []cart.CartLine
	loaded bool
}

func (s *stubCartLoader) Load(context.Context, uuid.UUID) ([]cart.CartLine, error) {
	s.loaded = true
	return s.lines, nil
}

func guestCheckoutBody(paymentMethod string) string {
	return `{
		"contact": {"email":"guest@example.com","full_name":"Rudo Moyo","phone":"+263771234567"},
		"address": {"full_name":"Rudo Moyo","phone":"+263771234567","street":"12 Samora Machel Ave","city":"Harare","state":"Harare"},
		"items": [{"product_id":"` + uuid.NewString() + `","product_name":"Maize Meal 10kg","vendor_id":"` + uuid.NewString() + `","unit_price":"8.50","quantity":2}],
		"payment_method": "` + paymentMethod + `"
	}`
}

func TestCheckoutReturnsCreatedWithGuestCredentials(t *testing.T) {
	batchID := uuid.New()
	svc := &stubCheckoutService{result: &checkoutsvc.Result{
		BatchID:       batchID,
		Orders:        []models.Order{{ID: uuid.New(), OrderNumber: "ZC-20260829-0001", Status: enums.OrderStatusPending}},
		GuestCreated:  true,
		GuestPassword: "generated-pass",
	}}
	handler := Checkout(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(guestCheckoutBody("paynow")))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CheckoutBatchID != batchID {
		t.Fatalf("unexpected batch id %s", envelope.Data.CheckoutBatchID)
	}
	if envelope.Data.GuestAccount == nil {
		t.Fatal("expected guest account block for a freshly created guest")
	}
	if envelope.Data.GuestAccount.Email != "guest@example.com" {
		t.Fatalf("unexpected guest email %s", envelope.Data.GuestAccount.Email)
	}
	if envelope.Data.GuestAccount.Password != "generated-pass" {
		t.Fatalf("unexpected guest password %s", envelope.Data.GuestAccount.Password)
	}
	if svc.session == nil || svc.session.User != nil {
		t.Fatal("guest session should carry no signed-in user")
	}
}

func TestCheckoutParsesCompoundPaymentMethod(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.Result{BatchID: uuid.New()}}
	handler := Checkout(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(guestCheckoutBody("iveri_ecocash")))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.session.Payment.Gateway != enums.GatewayTypeIveri {
		t.Fatalf("expected iveri gateway got %s", svc.session.Payment.Gateway)
	}
	if svc.session.Payment.SubMethod == nil || *svc.session.Payment.SubMethod != enums.PaymentSubMethodEcocash {
		t.Fatal("expected ecocash sub-method")
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := Checkout(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(guestCheckoutBody("barter")))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.session != nil {
		t.Fatal("service should not run on an invalid payment method")
	}
}

func TestCheckoutSurfacesRedirectURL(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.Result{
		BatchID:     uuid.New(),
		RedirectURL: "https://secure.example.com/3ds",
	}}
	handler := Checkout(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(guestCheckoutBody("paynow")))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 even when a redirect follows, got %d", resp.Code)
	}
	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RedirectURL != "https://secure.example.com/3ds" {
		t.Fatalf("unexpected redirect url %q", envelope.Data.RedirectURL)
	}
	if envelope.Data.GuestAccount != nil {
		t.Fatal("no guest account block expected")
	}
}

func TestCheckoutLoadsServerCartForSignedInCustomer(t *testing.T) {
	userID := uuid.New()
	loader := &stubCartLoader{lines: []cart.CartLine{{
		ProductID:   uuid.New(),
		ProductName: "Cooking Oil 2L",
		VendorID:    uuid.New(),
		UnitPrice:   decimal.RequireFromString("4.75"),
		Quantity:    1,
	}}}
	svc := &stubCheckoutService{result: &checkoutsvc.Result{BatchID: uuid.New()}}
	handler := Checkout(svc, loader, nil)

	body := `{
		"contact": {"email":"rudo@example.com","full_name":"Rudo Moyo","phone":"+263771234567"},
		"address": {"street":"12 Samora Machel Ave","city":"Harare","state":"Harare"},
		"items": [],
		"payment_method": "cash"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !loader.loaded {
		t.Fatal("expected the server cart to be loaded")
	}
	if len(svc.session.Lines) != 1 || svc.session.Lines[0].ProductName != "Cooking Oil 2L" {
		t.Fatalf("expected cart lines from the store, got %+v", svc.session.Lines)
	}
	if svc.session.User == nil || svc.session.User.UserID != userID {
		t.Fatal("expected signed-in user on the session")
	}
}

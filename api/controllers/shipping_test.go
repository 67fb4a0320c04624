package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/internal/shipping"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
)

type stubShippingService struct {
	methods  []models.ShippingMethod
	subtotal decimal.Decimal
	err      error
}

func (s *stubShippingService) Options(_ context.Context, subtotal decimal.Decimal) ([]models.ShippingMethod, error) {
	s.subtotal = subtotal
	return s.methods, s.err
}

func (s *stubShippingService) Resolve(context.Context, *uuid.UUID, decimal.Decimal) (models.ShippingMethod, error) {
	return models.ShippingMethod{}, s.err
}

func TestShippingMethodsListsPickupWithNullID(t *testing.T) {
	courierID := uuid.New()
	svc := &stubShippingService{methods: []models.ShippingMethod{
		shipping.Pickup(),
		{ID: courierID, Name: "Swift Courier", BaseCost: decimal.RequireFromString("5.00"), DeliveryDaysMin: 1, DeliveryDaysMax: 3},
	}}
	handler := ShippingMethods(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping-methods?subtotal=42.50", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.subtotal.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("expected subtotal forwarded, got %s", svc.subtotal)
	}

	var envelope struct {
		Data []shippingMethodResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 options got %d", len(envelope.Data))
	}
	if !envelope.Data[0].IsPickup {
		t.Fatal("expected pickup listed first")
	}
	if envelope.Data[0].ID != nil {
		t.Fatal("pickup should carry a null id")
	}
	if envelope.Data[1].ID == nil || *envelope.Data[1].ID != courierID {
		t.Fatalf("courier id lost in response: %+v", envelope.Data[1])
	}
}

func TestShippingMethodsDefaultsSubtotalToZero(t *testing.T) {
	svc := &stubShippingService{methods: []models.ShippingMethod{shipping.Pickup()}}
	handler := ShippingMethods(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping-methods", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.subtotal.IsZero() {
		t.Fatalf("expected zero subtotal, got %s", svc.subtotal)
	}
}

func TestShippingMethodsRejectsMalformedSubtotal(t *testing.T) {
	svc := &stubShippingService{}
	handler := ShippingMethods(svc, nil)

	for _, raw := range []string{"abc", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping-methods?subtotal="+raw, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("subtotal %q: expected 400 got %d", raw, resp.Code)
		}
	}
}

package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tmarowa/zimcart-backend/pkg/config"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

type stubGatewayRepo struct {
	rows map[enums.GatewayType]*models.PaymentGateway
}

func (s *stubGatewayRepo) ListActive(context.Context) ([]models.PaymentGateway, error) {
	out := []models.PaymentGateway{}
	for _, row := range s.rows {
		if row.IsActive {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubGatewayRepo) FindByType(_ context.Context, gatewayType enums.GatewayType) (*models.PaymentGateway, error) {
	row, ok := s.rows[gatewayType]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type stubOrderStore struct {
	mu          sync.Mutex
	paid        []uuid.UUID
	txns        []models.PaymentTransaction
	markPaidErr error
}

func (s *stubOrderStore) MarkPaid(_ context.Context, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markPaidErr != nil {
		return s.markPaidErr
	}
	s.paid = append(s.paid, orderID)
	return nil
}

func (s *stubOrderStore) CreatePaymentTransaction(_ context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, *txn)
	return txn, nil
}

func activeGateways() *stubGatewayRepo {
	return &stubGatewayRepo{rows: map[enums.GatewayType]*models.PaymentGateway{
		enums.GatewayTypePaynow: {GatewayType: enums.GatewayTypePaynow, DisplayName: "Paynow", IsActive: true},
		enums.GatewayTypeIveri:  {GatewayType: enums.GatewayTypeIveri, DisplayName: "Iveri", IsActive: true},
		enums.GatewayTypeStripe: {GatewayType: enums.GatewayTypeStripe, DisplayName: "Stripe", IsActive: false},
	}}
}

func testGatewayConfig() config.GatewaysConfig {
	return config.GatewaysConfig{
		Paynow: config.PaynowConfig{BaseURL: "http://paynow.test", IntegrationKey: "pn-key"},
		Iveri: config.IveriConfig{
			BaseURL:          "http://iveri.test",
			APIKey:           "iv-key",
			EcocashPANPrefix: "591260",
			EcocashExpiry:    "1249",
		},
		PayPal: config.PayPalConfig{BaseURL: "http://paypal.test"},
		Stripe: config.StripeGatewayConfig{BaseURL: "http://stripe.test"},
	}
}

func testDispatcher(t *testing.T, gateways GatewayRepository, store *stubOrderStore, rt roundTripFunc) *Dispatcher {
	t.Helper()

	client := NewClient(0, WithHTTPClient(&http.Client{Transport: rt}))
	logg := logger.New(logger.Options{ServiceName: "payments-test", Level: zerolog.Disabled})

	dispatcher, err := NewDispatcher(DispatcherParams{
		Gateways: gateways,
		Registry: NewRegistry(testGatewayConfig(), client),
		Orders:   store,
		Logger:   logg,
		Now:      func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return dispatcher
}

func testOrder(gateway enums.GatewayType, sub *enums.PaymentSubMethod) models.Order {
	return models.Order{
		ID:               uuid.New(),
		PaymentMethod:    gateway,
		PaymentSubMethod: sub,
		Currency:         enums.CurrencyUSD,
		Total:            decimal.RequireFromString("26.00"),
	}
}

func TestPayOfflineSettlesWithoutGatewayCall(t *testing.T) {
	store := &stubOrderStore{}
	dispatcher := testDispatcher(t, activeGateways(), store, func(*http.Request) (*http.Response, error) {
		t.Fatal("offline method must not reach a gateway")
		return nil, nil
	})

	result, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypeCash, nil), FormDetails{}, "app://checkout/success")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if result.Outcome != enums.PaymentOutcomeSucceeded {
		t.Fatalf("expected synthetic success, got %s", result.Outcome)
	}
	if len(store.paid) != 0 {
		t.Fatal("cash orders must stay pending/pending")
	}
	if len(store.txns) != 0 {
		t.Fatal("no audit row expected for offline settlement")
	}
}

func TestPaySuccessMarksOrderPaid(t *testing.T) {
	store := &stubOrderStore{}
	var captured PaymentRequest
	var authHeader string

	dispatcher := testDispatcher(t, activeGateways(), store, func(req *http.Request) (*http.Response, error) {
		authHeader = req.Header.Get("Authorization")
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(`{"success":true,"transaction_id":"txn_001"}`), nil
	})

	order := testOrder(enums.GatewayTypePaynow, nil)
	result, err := dispatcher.Pay(context.Background(), order, FormDetails{}, "app://checkout/success")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	if result.Outcome != enums.PaymentOutcomeSucceeded || result.TransactionRef != "txn_001" {
		t.Fatalf("unexpected result %+v", result)
	}
	if authHeader != "Bearer pn-key" {
		t.Fatalf("unexpected auth header %q", authHeader)
	}
	if captured.OrderID != order.ID || !captured.Amount.Equal(order.Total) {
		t.Fatalf("request carries wrong order: %+v", captured)
	}
	if captured.ReturnURL != "app://checkout/success" {
		t.Fatalf("return URL not forwarded: %q", captured.ReturnURL)
	}
	if len(store.paid) != 1 || store.paid[0] != order.ID {
		t.Fatal("order not marked paid")
	}
	if len(store.txns) != 1 || store.txns[0].Outcome != enums.PaymentOutcomeSucceeded {
		t.Fatalf("audit row missing or wrong: %+v", store.txns)
	}
	if store.txns[0].Reference == nil || *store.txns[0].Reference != "txn_001" {
		t.Fatal("gateway reference not recorded")
	}
}

func TestPayCardSendsCleanedPAN(t *testing.T) {
	store := &stubOrderStore{}
	var captured PaymentRequest

	dispatcher := testDispatcher(t, activeGateways(), store, func(req *http.Request) (*http.Response, error) {
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(`{"success":true}`), nil
	})

	sub := enums.PaymentSubMethodCard
	form := FormDetails{Card: &CardDetails{Number: "4539 1488 0343 6467", Expiry: "1230", CVV: "123"}}

	if _, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypeIveri, &sub), form, ""); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if captured.GatewayType != "iveri_card" {
		t.Fatalf("wire gateway type %q", captured.GatewayType)
	}
	if captured.Metadata["card_pan"] != "4539148803436467" {
		t.Fatalf("metadata carries raw input: %q", captured.Metadata["card_pan"])
	}
	if captured.Metadata["card_expiry"] != "1230" || captured.Metadata["card_cvv"] != "123" {
		t.Fatalf("card metadata incomplete: %+v", captured.Metadata)
	}
}

func TestPayEcocashBuildsVirtualPAN(t *testing.T) {
	store := &stubOrderStore{}
	var captured PaymentRequest

	dispatcher := testDispatcher(t, activeGateways(), store, func(req *http.Request) (*http.Response, error) {
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(`{"success":true}`), nil
	})

	sub := enums.PaymentSubMethodEcocash
	form := FormDetails{Ecocash: &EcocashDetails{PhoneNumber: "077 123 4567"}}

	if _, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypeIveri, &sub), form, ""); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if captured.Metadata["card_pan"] != "5912600771234567" {
		t.Fatalf("virtual PAN %q", captured.Metadata["card_pan"])
	}
	if captured.Metadata["card_expiry"] != "1249" {
		t.Fatalf("fixed expiry %q", captured.Metadata["card_expiry"])
	}
	if captured.Metadata["channel"] != "ecocash" {
		t.Fatalf("channel %q", captured.Metadata["channel"])
	}
}

func TestPayEcocashHonorsGatewayRowOverrides(t *testing.T) {
	gateways := activeGateways()
	gateways.rows[enums.GatewayTypeIveri].Configuration = map[string]string{
		"ecocash_pan_prefix": "123456",
		"ecocash_expiry":     "1299",
	}

	store := &stubOrderStore{}
	var captured PaymentRequest
	dispatcher := testDispatcher(t, gateways, store, func(req *http.Request) (*http.Response, error) {
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(`{"success":true}`), nil
	})

	sub := enums.PaymentSubMethodEcocash
	form := FormDetails{Ecocash: &EcocashDetails{PhoneNumber: "0771234567"}}
	if _, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypeIveri, &sub), form, ""); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if captured.Metadata["card_pan"] != "1234560771234567" {
		t.Fatalf("override prefix ignored: %q", captured.Metadata["card_pan"])
	}
	if captured.Metadata["card_expiry"] != "1299" {
		t.Fatalf("override expiry ignored: %q", captured.Metadata["card_expiry"])
	}
}

func TestPayRedirectLeavesOrderUntouched(t *testing.T) {
	store := &stubOrderStore{}
	dispatcher := testDispatcher(t, activeGateways(), store, func(*http.Request) (*http.Response, error) {
		return jsonResponse(`{"success":false,"redirect_url":"https://3ds.example/verify"}`), nil
	})

	result, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypePaynow, nil), FormDetails{}, "")
	if err != nil {
		t.Fatalf("redirect must not be an error: %v", err)
	}
	if result.Outcome != enums.PaymentOutcomeRedirect {
		t.Fatalf("outcome %s", result.Outcome)
	}
	if result.RedirectURL != "https://3ds.example/verify" {
		t.Fatalf("redirect URL %q", result.RedirectURL)
	}
	if len(store.paid) != 0 {
		t.Fatal("redirect must not mark the order paid")
	}
	if len(store.txns) != 1 || store.txns[0].Outcome != enums.PaymentOutcomeRedirect {
		t.Fatalf("redirect audit row missing: %+v", store.txns)
	}
}

func TestPayDeclineSurfacesGatewayError(t *testing.T) {
	store := &stubOrderStore{}
	dispatcher := testDispatcher(t, activeGateways(), store, func(*http.Request) (*http.Response, error) {
		return jsonResponse(`{"success":false,"error":"insufficient funds"}`), nil
	})

	_, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypePaynow, nil), FormDetails{}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodePaymentDeclined) {
		t.Fatalf("expected PAYMENT_DECLINED, got %v", err)
	}
	if !strings.Contains(err.Error(), "insufficient funds") {
		t.Fatalf("gateway text not surfaced: %v", err)
	}
	if len(store.paid) != 0 {
		t.Fatal("declined order must not be marked paid")
	}
	if len(store.txns) != 1 || store.txns[0].Outcome != enums.PaymentOutcomeFailed {
		t.Fatalf("failed audit row missing: %+v", store.txns)
	}
	if store.txns[0].Error == nil || *store.txns[0].Error != "insufficient funds" {
		t.Fatal("decline reason not recorded")
	}
}

func TestPayRemapsAuthenticationErrors(t *testing.T) {
	store := &stubOrderStore{}
	dispatcher := testDispatcher(t, activeGateways(), store, func(*http.Request) (*http.Response, error) {
		return jsonResponse(`{"success":false,"error":"User not authenticated"}`), nil
	})

	_, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypePaynow, nil), FormDetails{}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodePaymentDeclined) {
		t.Fatalf("expected PAYMENT_DECLINED, got %v", err)
	}
	if !strings.Contains(err.Error(), "session has expired") {
		t.Fatalf("authentication error not remapped: %v", err)
	}
}

func TestPayTransportFailureIsDependencyError(t *testing.T) {
	store := &stubOrderStore{}
	dispatcher := testDispatcher(t, activeGateways(), store, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypePaynow, nil), FormDetails{}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if len(store.paid) != 0 {
		t.Fatal("unreachable gateway must not mark the order paid")
	}
	if len(store.txns) != 1 || store.txns[0].Outcome != enums.PaymentOutcomeFailed {
		t.Fatalf("transport failure audit row missing: %+v", store.txns)
	}
}

func TestPayRejectsInactiveAndUnknownGateways(t *testing.T) {
	store := &stubOrderStore{}
	dispatcher := testDispatcher(t, activeGateways(), store, func(*http.Request) (*http.Response, error) {
		t.Fatal("no gateway call expected")
		return nil, nil
	})

	_, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypeStripe, nil), FormDetails{}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("inactive gateway: expected VALIDATION_ERROR, got %v", err)
	}

	_, err = dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypePayPal, nil), FormDetails{}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("unconfigured gateway: expected VALIDATION_ERROR, got %v", err)
	}
}

func TestPayRejectsUnsupportedCurrency(t *testing.T) {
	gateways := activeGateways()
	gateways.rows[enums.GatewayTypePaynow].SupportedCurrencies = []string{"ZWG"}

	store := &stubOrderStore{}
	dispatcher := testDispatcher(t, gateways, store, func(*http.Request) (*http.Response, error) {
		t.Fatal("no gateway call expected")
		return nil, nil
	})

	_, err := dispatcher.Pay(context.Background(), testOrder(enums.GatewayTypePaynow, nil), FormDetails{}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestValidateFormRunsBeforeAnyNetworkCall(t *testing.T) {
	card := enums.PaymentSubMethodCard
	selection := MethodSelection{Gateway: enums.GatewayTypeIveri, SubMethod: &card}

	err := ValidateForm(selection, FormDetails{Card: &CardDetails{Number: "4539148803436468", Expiry: "1230", CVV: "123"}}, testNow)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for bad Luhn, got %v", err)
	}

	if err := ValidateForm(selection, FormDetails{}, testNow); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for missing card, got %v", err)
	}

	ok := ValidateForm(MethodSelection{Gateway: enums.GatewayTypeCash}, FormDetails{}, testNow)
	if ok != nil {
		t.Fatalf("cash needs no form details: %v", ok)
	}
}

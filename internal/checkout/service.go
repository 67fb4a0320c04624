package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/tmarowa/zimcart-backend/internal/cart"
	"github.com/tmarowa/zimcart-backend/internal/identity"
	"github.com/tmarowa/zimcart-backend/internal/orders"
	"github.com/tmarowa/zimcart-backend/internal/payments"
	"github.com/tmarowa/zimcart-backend/internal/pricing"
	"github.com/tmarowa/zimcart-backend/internal/shipping"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
	"github.com/tmarowa/zimcart-backend/pkg/metrics"
	"github.com/tmarowa/zimcart-backend/pkg/types"
)

const (
	resultSuccess  = "success"
	resultRedirect = "redirect"
	resultError    = "error"
)

// Result is the aggregate outcome of one checkout submission. A
// non-empty RedirectURL means the batch is parked awaiting browser
// verification; Orders then holds whatever was written before the
// redirect surfaced. GuestPassword is set only when a guest profile
// was provisioned and appears nowhere else, ever.
type Result struct {
	BatchID       uuid.UUID
	Orders        []models.Order
	FirstOrderID  uuid.UUID
	RedirectURL   string
	GuestCreated  bool
	GuestPassword string
}

type shippingResolver interface {
	Resolve(ctx context.Context, methodID *uuid.UUID, subtotal decimal.Decimal) (models.ShippingMethod, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, session *identity.Session, contact identity.Contact) (*identity.Resolution, error)
}

type orderWriter interface {
	Write(ctx context.Context, input orders.WriteInput) (*models.Order, error)
}

type paymentDispatcher interface {
	Pay(ctx context.Context, order models.Order, form payments.FormDetails, returnURL string) (*payments.Result, error)
}

type cartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Service runs the checkout sequence end to end.
type Service interface {
	Checkout(ctx context.Context, session Session) (*Result, error)
}

type service struct {
	shipping   shippingResolver
	identities identityResolver
	writer     orderWriter
	dispatcher paymentDispatcher
	carts      cartClearer
	taxCfg     pricing.TaxConfig
	returnURL  string
	currency   enums.Currency
	logg       *logger.Logger
	metrics    *metrics.CheckoutMetrics
	now        func() time.Time
}

// ServiceParams collects the orchestrator dependencies. Carts and
// Metrics are optional; everything else is required.
type ServiceParams struct {
	Shipping   shippingResolver
	Identities identityResolver
	Writer     orderWriter
	Dispatcher paymentDispatcher
	Carts      cartClearer
	TaxConfig  pricing.TaxConfig
	ReturnURL  string
	Currency   enums.Currency
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
	Now        func() time.Time
}

// NewService validates the wiring and builds the orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Shipping == nil {
		return nil, fmt.Errorf("shipping resolver required")
	}
	if params.Identities == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	if params.Writer == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("payment dispatcher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		shipping:   params.Shipping,
		identities: params.Identities,
		writer:     params.Writer,
		dispatcher: params.Dispatcher,
		carts:      params.Carts,
		taxCfg:     params.TaxConfig,
		returnURL:  params.ReturnURL,
		currency:   currency,
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        now,
	}, nil
}

// legOutcome is one vendor partition's write+pay result, kept in
// partition order for deterministic aggregation.
type legOutcome struct {
	order   *models.Order
	payment *payments.Result
	err     error
}

// Checkout validates the session, resolves the customer, writes one
// order per vendor and dispatches its payment. Vendor legs run
// concurrently; each leg writes before it pays. The first redirect is
// terminal for the whole batch. Failed legs never roll back succeeded
// siblings; the shared checkout_batch_id keys later reconciliation.
func (s *service) Checkout(ctx context.Context, session Session) (result *Result, err error) {
	started := s.now()
	defer func() {
		label := resultError
		switch {
		case err == nil && result != nil && result.RedirectURL != "":
			label = resultRedirect
		case err == nil:
			label = resultSuccess
		}
		s.metrics.IncAttempt(label)
		s.metrics.ObserveDuration(label, time.Since(started))
	}()

	if err := s.validateSession(session); err != nil {
		return nil, err
	}

	subtotal := cart.Subtotal(session.Lines)
	method, err := s.shipping.Resolve(ctx, session.ShippingMethodID, subtotal)
	if err != nil {
		return nil, err
	}
	if !shipping.IsPickup(method) {
		if err := validateDeliveryAddress(session.Address); err != nil {
			return nil, err
		}
	}

	if err := payments.ValidateForm(session.Payment, session.Form, s.now()); err != nil {
		return nil, err
	}

	resolution, err := s.identities.Resolve(ctx, session.User, session.Contact)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, resolution.UserID.String())

	partitions := cart.Partition(session.Lines, method.BaseCost, s.taxCfg)
	s.metrics.ObservePartitions(len(partitions))

	batchID := uuid.New()
	ctx = s.logg.WithCheckoutBatchID(ctx, batchID.String())
	s.logg.Info(ctx, "checkout accepted")

	legs := s.runLegs(ctx, session, partitions, method, resolution.UserID, batchID)

	return s.aggregate(ctx, session, resolution, batchID, legs)
}

// runLegs writes and pays every vendor partition concurrently. Order
// writing happens-before that vendor's payment dispatch; nothing
// orders the legs against each other.
func (s *service) runLegs(
	ctx context.Context,
	session Session,
	partitions []cart.VendorPartition,
	method models.ShippingMethod,
	customerID uuid.UUID,
	batchID uuid.UUID,
) []legOutcome {
	legs := make([]legOutcome, len(partitions))

	var wg sync.WaitGroup
	for i, partition := range partitions {
		wg.Add(1)
		go func(i int, partition cart.VendorPartition) {
			defer wg.Done()
			legs[i] = s.runLeg(ctx, session, partition, method, customerID, batchID)
		}(i, partition)
	}
	wg.Wait()

	return legs
}

func (s *service) runLeg(
	ctx context.Context,
	session Session,
	partition cart.VendorPartition,
	method models.ShippingMethod,
	customerID uuid.UUID,
	batchID uuid.UUID,
) legOutcome {
	order, err := s.writer.Write(ctx, orders.WriteInput{
		Partition:        partition,
		ShippingMethod:   method,
		ShippingAddress:  session.Address,
		PaymentMethod:    session.Payment.Gateway,
		PaymentSubMethod: session.Payment.SubMethod,
		Currency:         s.currency,
		CustomerID:       customerID,
		BatchID:          batchID,
	})
	// Writer errors arrive already coded for the transport layer.
	if err != nil {
		return legOutcome{err: err}
	}

	payment, err := s.dispatcher.Pay(ctx, *order, session.Form, s.returnURL)
	if err != nil {
		return legOutcome{order: order, err: err}
	}
	return legOutcome{order: order, payment: payment}
}

// aggregate folds the per-leg outcomes into one checkout result,
// scanning in partition order so the first redirect wins.
func (s *service) aggregate(ctx context.Context, session Session, resolution *identity.Resolution, batchID uuid.UUID, legs []legOutcome) (*Result, error) {
	written := make([]models.Order, 0, len(legs))
	var failures error

	for _, leg := range legs {
		if leg.order != nil {
			written = append(written, *leg.order)
		}
		if leg.err != nil {
			failures = multierr.Append(failures, leg.err)
			continue
		}
		if leg.payment != nil && leg.payment.Outcome == enums.PaymentOutcomeRedirect {
			s.logg.Info(ctx, "checkout parked on gateway redirect")
			return &Result{
				BatchID:       batchID,
				Orders:        written,
				FirstOrderID:  firstOrderID(written),
				RedirectURL:   leg.payment.RedirectURL,
				GuestCreated:  resolution.GuestCreated,
				GuestPassword: resolution.GeneratedPassword,
			}, nil
		}
	}

	if failures != nil {
		s.logg.Error(ctx, "checkout completed with failed vendor legs", failures)
		return nil, firstTypedError(failures)
	}

	s.clearCart(ctx, session, resolution.UserID)
	s.logg.Info(ctx, "checkout completed")

	return &Result{
		BatchID:       batchID,
		Orders:        written,
		FirstOrderID:  firstOrderID(written),
		GuestCreated:  resolution.GuestCreated,
		GuestPassword: resolution.GeneratedPassword,
	}, nil
}

// clearCart drops the server-side cart exactly once, only after every
// leg succeeded. Guests have no server-side cart to clear.
func (s *service) clearCart(ctx context.Context, session Session, userID uuid.UUID) {
	if s.carts == nil || session.User == nil {
		return
	}
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logg.Warn(ctx, "clearing cart after checkout failed")
	}
}

func (s *service) validateSession(session Session) error {
	missing := []string{}
	if strings.TrimSpace(session.Contact.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(session.Contact.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if session.Contact.Phone == nil || strings.TrimSpace(*session.Contact.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return pkgerrors.New(pkgerrors.CodeValidation, "contact details are incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	if len(session.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	for _, line := range session.Lines {
		if line.ProductID == uuid.Nil || line.VendorID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line is missing product or vendor")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line price cannot be negative")
		}
	}
	return nil
}

// validateDeliveryAddress applies only to courier shipping; pickup
// replaces the address with a placeholder downstream.
func validateDeliveryAddress(address types.Address) error {
	missing := []string{}
	if strings.TrimSpace(address.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(address.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(address.State) == "" {
		missing = append(missing, "state")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}

func firstOrderID(written []models.Order) uuid.UUID {
	if len(written) == 0 {
		return uuid.Nil
	}
	return written[0].ID
}

// firstTypedError surfaces the first coded error from the aggregate so
// the transport layer maps a meaningful status; the full multierr is
// already logged.
func firstTypedError(err error) error {
	for _, item := range multierr.Errors(err) {
		if typed := pkgerrors.As(item); typed != nil {
			return typed
		}
	}
	return err
}

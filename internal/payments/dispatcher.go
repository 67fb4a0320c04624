package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
	"github.com/tmarowa/zimcart-backend/pkg/metrics"
)

const sessionExpiredMessage = "your payment session has expired, please sign in and try again"

// Result is one order's settled payment outcome. Redirect carries the
// browser verification URL; it is not a failure.
type Result struct {
	Outcome        enums.PaymentOutcome
	RedirectURL    string
	TransactionRef string
}

// orderStore is the slice of the orders repository the dispatcher
// needs: the paid transition plus the audit trail.
type orderStore interface {
	MarkPaid(ctx context.Context, orderID uuid.UUID) error
	CreatePaymentTransaction(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error)
}

// Dispatcher runs the per-order payment state machine: offline methods
// settle synthetically, everything else goes through a gateway adapter.
type Dispatcher struct {
	gateways GatewayRepository
	registry *Registry
	orders   orderStore
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
}

// DispatcherParams collects the dispatcher dependencies.
type DispatcherParams struct {
	Gateways GatewayRepository
	Registry *Registry
	Orders   orderStore
	Logger   *logger.Logger
	Metrics  *metrics.CheckoutMetrics
	Now      func() time.Time
}

// NewDispatcher validates the wiring and builds a dispatcher.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Gateways == nil {
		return nil, errors.New("gateway repository is required")
	}
	if params.Registry == nil {
		return nil, errors.New("adapter registry is required")
	}
	if params.Orders == nil {
		return nil, errors.New("order store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		gateways: params.Gateways,
		registry: params.Registry,
		orders:   params.Orders,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

// ValidateForm runs the sub-method input checks without any network
// call. The orchestrator calls this before writing a single order.
func ValidateForm(selection MethodSelection, form FormDetails, now time.Time) error {
	if err := selection.Validate(); err != nil {
		return err
	}
	if selection.SubMethod == nil {
		return nil
	}
	switch *selection.SubMethod {
	case enums.PaymentSubMethodCard:
		if form.Card == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "card details are required")
		}
		_, err := ValidateCard(*form.Card, now)
		return err
	case enums.PaymentSubMethodEcocash:
		if form.Ecocash == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "mobile money number is required")
		}
		_, err := CleanEcocashNumber(form.Ecocash.PhoneNumber)
		return err
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment sub-method")
	}
}

// Pay settles one vendor order. Offline methods succeed without a
// gateway call and leave the order pending/pending for collection on
// delivery. Online methods are charged through their adapter; only a
// gateway success transitions the order to processing/paid.
func (d *Dispatcher) Pay(ctx context.Context, order models.Order, form FormDetails, returnURL string) (*Result, error) {
	ctx = d.logg.WithOrderID(ctx, order.ID.String())
	ctx = d.logg.WithGateway(ctx, order.PaymentMethod.String())

	if order.PaymentMethod.IsOffline() {
		d.logg.Info(ctx, "offline payment method, order awaits collection")
		d.countOutcome(order.PaymentMethod, enums.PaymentOutcomeSucceeded)
		return &Result{Outcome: enums.PaymentOutcomeSucceeded}, nil
	}

	gateway, err := d.gateways.FindByType(ctx, order.PaymentMethod)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is not available").WithDetails(order.PaymentMethod.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment gateway")
	}
	if !gateway.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is not available").WithDetails(order.PaymentMethod.String())
	}
	if err := d.checkCurrency(gateway, order.Currency); err != nil {
		return nil, err
	}

	adapter, err := d.registry.Resolve(order.PaymentMethod)
	if err != nil {
		return nil, err
	}

	verdict, err := adapter.Charge(ctx, ChargeInput{
		Gateway:   *gateway,
		Order:     order,
		Form:      form,
		ReturnURL: returnURL,
		Now:       d.now(),
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			d.recordTransaction(ctx, order, enums.PaymentOutcomeFailed, nil, err.Error())
			d.countOutcome(order.PaymentMethod, enums.PaymentOutcomeFailed)
			d.logg.Error(ctx, "gateway unreachable", err)
		}
		return nil, err
	}

	switch {
	case verdict.Success:
		return d.settleSuccess(ctx, order, verdict)
	case verdict.RedirectURL != nil && *verdict.RedirectURL != "":
		return d.settleRedirect(ctx, order, verdict)
	default:
		return nil, d.settleFailure(ctx, order, verdict)
	}
}

func (d *Dispatcher) settleSuccess(ctx context.Context, order models.Order, verdict *PaymentResult) (*Result, error) {
	d.recordTransaction(ctx, order, enums.PaymentOutcomeSucceeded, verdict.TransactionID, "")
	if err := d.orders.MarkPaid(ctx, order.ID); err != nil {
		d.logg.Error(ctx, "charge succeeded but order transition failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order paid")
	}
	d.countOutcome(order.PaymentMethod, enums.PaymentOutcomeSucceeded)
	d.logg.Info(ctx, "payment captured")

	result := &Result{Outcome: enums.PaymentOutcomeSucceeded}
	if verdict.TransactionID != nil {
		result.TransactionRef = *verdict.TransactionID
	}
	return result, nil
}

// settleRedirect leaves the order pending/pending; the out-of-band
// callback, not this process, resolves the verification.
func (d *Dispatcher) settleRedirect(ctx context.Context, order models.Order, verdict *PaymentResult) (*Result, error) {
	d.recordTransaction(ctx, order, enums.PaymentOutcomeRedirect, verdict.TransactionID, "")
	d.countOutcome(order.PaymentMethod, enums.PaymentOutcomeRedirect)
	d.logg.Info(ctx, "gateway requires browser verification")

	result := &Result{
		Outcome:     enums.PaymentOutcomeRedirect,
		RedirectURL: *verdict.RedirectURL,
	}
	if verdict.TransactionID != nil {
		result.TransactionRef = *verdict.TransactionID
	}
	return result, nil
}

func (d *Dispatcher) settleFailure(ctx context.Context, order models.Order, verdict *PaymentResult) error {
	message := "payment was declined"
	if verdict.Error != nil && *verdict.Error != "" {
		message = remapGatewayError(*verdict.Error)
	}
	d.recordTransaction(ctx, order, enums.PaymentOutcomeFailed, verdict.TransactionID, message)
	d.countOutcome(order.PaymentMethod, enums.PaymentOutcomeFailed)
	d.logg.Warn(ctx, "gateway declined payment")
	return pkgerrors.New(pkgerrors.CodePaymentDeclined, message)
}

// recordTransaction appends the audit row. A failure to audit never
// masks the payment verdict itself.
func (d *Dispatcher) recordTransaction(ctx context.Context, order models.Order, outcome enums.PaymentOutcome, reference *string, errText string) {
	txn := &models.PaymentTransaction{
		OrderID:     order.ID,
		GatewayType: order.PaymentMethod,
		SubMethod:   order.PaymentSubMethod,
		Amount:      order.Total,
		Currency:    order.Currency,
		Reference:   reference,
		Outcome:     outcome,
	}
	if errText != "" {
		txn.Error = &errText
	}
	if _, err := d.orders.CreatePaymentTransaction(ctx, txn); err != nil {
		d.logg.Error(ctx, "recording payment transaction", err)
	}
}

func (d *Dispatcher) checkCurrency(gateway *models.PaymentGateway, currency enums.Currency) error {
	if len(gateway.SupportedCurrencies) == 0 {
		return nil
	}
	for _, supported := range gateway.SupportedCurrencies {
		if strings.EqualFold(supported, currency.String()) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "payment method does not support this currency").WithDetails(currency.String())
}

func (d *Dispatcher) countOutcome(gateway enums.GatewayType, outcome enums.PaymentOutcome) {
	d.metrics.IncOutcome(gateway.String(), outcome.String())
}

// remapGatewayError swaps known gateway phrasings for friendlier text;
// anything unrecognized is surfaced verbatim.
func remapGatewayError(message string) string {
	if strings.Contains(strings.ToLower(message), "not authenticated") {
		return sessionExpiredMessage
	}
	return message
}

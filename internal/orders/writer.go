package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmarowa/zimcart-backend/internal/cart"
	"github.com/tmarowa/zimcart-backend/internal/shipping"
	"github.com/tmarowa/zimcart-backend/pkg/db/models"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// WriteInput carries everything needed to persist one vendor's order
// out of a checkout batch.
type WriteInput struct {
	Partition        cart.VendorPartition
	ShippingMethod   models.ShippingMethod
	ShippingAddress  types.Address
	PaymentMethod    enums.GatewayType
	PaymentSubMethod *enums.PaymentSubMethod
	Currency         enums.Currency
	CustomerID       uuid.UUID
	BatchID          uuid.UUID
}

// Writer persists per-vendor orders.
type Writer interface {
	Write(ctx context.Context, input WriteInput) (*models.Order, error)
}

type writer struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewWriter builds an order writer with the required dependencies.
func NewWriter(repo Repository, tx txRunner) (Writer, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &writer{repo: repo, tx: tx, now: time.Now}, nil
}

// Write creates the order row and its item snapshots in one
// transaction. A failure here aborts only this vendor's order; sibling
// orders already written for the same batch stay committed.
func (w *writer) Write(ctx context.Context, input WriteInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.BatchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout batch id required")
	}
	if len(input.Partition.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor partition has no lines")
	}

	number, err := GenerateOrderNumber(w.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
	}

	address := input.ShippingAddress
	var shippingMethodID *uuid.UUID
	if shipping.IsPickup(input.ShippingMethod) {
		// Pickup batches ignore whatever address the customer typed.
		address = types.StorePickupAddress(address.FullName, address.Phone)
	} else {
		id := input.ShippingMethod.ID
		shippingMethodID = &id
	}

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}

	order := &models.Order{
		OrderNumber:      number,
		CheckoutBatchID:  input.BatchID,
		CustomerID:       input.CustomerID,
		VendorID:         input.Partition.VendorID,
		Status:           enums.OrderStatusPending,
		PaymentStatus:    enums.PaymentStatusPending,
		PaymentMethod:    input.PaymentMethod,
		PaymentSubMethod: input.PaymentSubMethod,
		ShippingMethodID: shippingMethodID,
		ShippingAddress:  address,
		Currency:         currency,
		Subtotal:         input.Partition.Subtotal,
		TaxTotal:         input.Partition.TaxTotal,
		ShippingTotal:    input.Partition.ShippingShare,
		Total:            input.Partition.Total,
		CommissionAmount: input.Partition.CommissionTotal,
	}

	err = w.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := w.repo.WithTx(tx)

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(input.Partition.Lines))
		for _, line := range input.Partition.Lines {
			items = append(items, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  line.LineSubtotal,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

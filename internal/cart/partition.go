package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/internal/pricing"
)

// CartLine is one product entry as submitted at checkout.
type CartLine struct {
	ProductID   uuid.UUID
	ProductName string
	VendorID    uuid.UUID
	UnitPrice   decimal.Decimal
	Quantity    int
}

// PricedLine carries a cart line with its per-line money breakdown.
// LineSubtotal is pre-tax and is what order items snapshot.
type PricedLine struct {
	CartLine
	LineSubtotal decimal.Decimal
	VAT          decimal.Decimal
	Commission   decimal.Decimal
	LineTotal    decimal.Decimal
}

// VendorPartition is the slice of one checkout destined for a single
// vendor, with aggregates summed from already-rounded line values.
type VendorPartition struct {
	VendorID        uuid.UUID
	Lines           []PricedLine
	Subtotal        decimal.Decimal
	TaxTotal        decimal.Decimal
	CommissionTotal decimal.Decimal
	ShippingShare   decimal.Decimal
	Total           decimal.Decimal
}

// Subtotal sums unit price times quantity over the whole cart, before
// tax and shipping. Shipping eligibility is evaluated against this.
func Subtotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2))
	}
	return total
}

// Partition groups cart lines by vendor and prices each partition.
// Vendors appear in first-seen cart order and lines keep their original
// order within a vendor. The shared shipping cost is split evenly by
// partition count; the sub-cent remainder is folded into the first
// partition so the shares reconcile exactly against the method cost.
func Partition(lines []CartLine, shippingCost decimal.Decimal, cfg pricing.TaxConfig) []VendorPartition {
	if len(lines) == 0 {
		return nil
	}

	order := make([]uuid.UUID, 0)
	byVendor := make(map[uuid.UUID]*VendorPartition)

	for _, line := range lines {
		part, ok := byVendor[line.VendorID]
		if !ok {
			part = &VendorPartition{
				VendorID:        line.VendorID,
				Subtotal:        decimal.Zero,
				TaxTotal:        decimal.Zero,
				CommissionTotal: decimal.Zero,
			}
			byVendor[line.VendorID] = part
			order = append(order, line.VendorID)
		}

		quote := pricing.Quote(line.UnitPrice, line.Quantity, cfg)
		subtotal := quote.Total.Sub(quote.VAT)

		part.Lines = append(part.Lines, PricedLine{
			CartLine:     line,
			LineSubtotal: subtotal,
			VAT:          quote.VAT,
			Commission:   quote.Commission,
			LineTotal:    quote.Total,
		})
		part.Subtotal = part.Subtotal.Add(subtotal)
		part.TaxTotal = part.TaxTotal.Add(quote.VAT)
		part.CommissionTotal = part.CommissionTotal.Add(quote.Commission)
	}

	shares := splitShipping(shippingCost, len(order))

	out := make([]VendorPartition, 0, len(order))
	for i, vendorID := range order {
		part := byVendor[vendorID]
		part.ShippingShare = shares[i]
		part.Total = part.Subtotal.Add(part.TaxTotal).Add(part.ShippingShare)
		out = append(out, *part)
	}
	return out
}

// splitShipping divides the cost evenly across count partitions,
// rounding each share to cents and assigning the remainder to the
// first share so the sum equals the original cost.
func splitShipping(cost decimal.Decimal, count int) []decimal.Decimal {
	shares := make([]decimal.Decimal, count)
	if count == 0 {
		return shares
	}

	cost = cost.Round(2)
	even := cost.Div(decimal.NewFromInt(int64(count))).Round(2)
	rest := cost.Sub(even.Mul(decimal.NewFromInt(int64(count - 1))))

	shares[0] = rest
	for i := 1; i < count; i++ {
		shares[i] = even
	}
	return shares
}

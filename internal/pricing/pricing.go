package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxConfig carries the jurisdiction rates applied to every line.
type TaxConfig struct {
	VATRate        decimal.Decimal
	CommissionRate decimal.Decimal
}

// LinePrice is the priced breakdown of a single base amount. Commission
// is deducted from the vendor payout, never added to the customer total.
type LinePrice struct {
	VAT        decimal.Decimal
	Commission decimal.Decimal
	Total      decimal.Decimal
}

// ParseTaxConfig builds a TaxConfig from the decimal strings carried in
// configuration, rejecting negative rates.
func ParseTaxConfig(vatRate, commissionRate string) (TaxConfig, error) {
	vat, err := decimal.NewFromString(vatRate)
	if err != nil {
		return TaxConfig{}, fmt.Errorf("invalid vat rate %q: %w", vatRate, err)
	}
	commission, err := decimal.NewFromString(commissionRate)
	if err != nil {
		return TaxConfig{}, fmt.Errorf("invalid commission rate %q: %w", commissionRate, err)
	}
	if vat.IsNegative() {
		return TaxConfig{}, fmt.Errorf("vat rate must not be negative, got %s", vat)
	}
	if commission.IsNegative() {
		return TaxConfig{}, fmt.Errorf("commission rate must not be negative, got %s", commission)
	}
	return TaxConfig{VATRate: vat, CommissionRate: commission}, nil
}

// Price computes VAT, commission, and customer total for a base amount.
// Negative bases are clamped to zero. Each component is rounded exactly
// once; callers summing lines must sum the already-rounded values.
func Price(base decimal.Decimal, cfg TaxConfig) LinePrice {
	if base.IsNegative() {
		base = decimal.Zero
	}

	vat := base.Mul(cfg.VATRate).Round(2)
	commission := base.Mul(cfg.CommissionRate).Round(2)
	total := base.Round(2).Add(vat)

	return LinePrice{
		VAT:        vat,
		Commission: commission,
		Total:      total,
	}
}

// Quote prices one cart line: the unit price is multiplied by the
// quantity before any rounding so a line rounds once, not per unit.
func Quote(unitPrice decimal.Decimal, quantity int, cfg TaxConfig) LinePrice {
	if quantity < 0 {
		quantity = 0
	}
	extended := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return Price(extended, cfg)
}

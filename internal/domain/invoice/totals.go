package invoice

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the derived financial figures of an invoice.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals derives subtotal, tax and grand total from the line items.
// Each line amount is quantity×rate rounded to 2 decimals, tax applies to the
// subtotal when enabled, and the grand total is clamped at zero when the
// discount exceeds subtotal+tax. Client-submitted totals are never trusted;
// this runs on every create and update before persisting.
func ComputeTotals(services []ServiceItem, taxEnabled bool, taxPercent, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, s := range services {
		subtotal = subtotal.Add(s.Quantity.Mul(s.Rate).Round(2))
	}

	tax := decimal.Zero
	if taxEnabled {
		tax = subtotal.Mul(taxPercent).Div(hundred).Round(2)
	}

	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{Subtotal: subtotal, TaxAmount: tax, Total: total}
}

// ApplyTotals recomputes every derived figure on inv in place: per-line
// amounts and the totals block.
func ApplyTotals(inv *Invoice) {
	for i := range inv.Services {
		inv.Services[i].Amount = inv.Services[i].Quantity.Mul(inv.Services[i].Rate).Round(2)
	}
	t := ComputeTotals(inv.Services, inv.TaxEnabled, inv.TaxPercent, inv.Discount)
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.Total = t.Total
	if !inv.TaxEnabled {
		inv.TaxPercent = decimal.Zero
	}
}

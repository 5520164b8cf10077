package core

import "github.com/shopspring/decimal"

// moneyPlaces is the scale amounts are rounded to.
const moneyPlaces = 2

// LineAmounts are the derived amounts of a single line.
// Gross always equals Discount + Total exactly.
type LineAmounts struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Totals are the derived header amounts of a quote.
// DiscountAmount is informational: Subtotal already has it netted out.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// ComputeLine prices one line: gross = unitPrice × quantity, discount is
// gross × percent / 100 rounded to cents, total = gross − discount.
func ComputeLine(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) LineAmounts {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	discount := gross.Mul(discountPercent).Div(hundred).Round(moneyPlaces)
	return LineAmounts{
		Gross:    gross,
		Discount: discount,
		Total:    gross.Sub(discount),
	}
}

// ComputeTotals derives header totals from line items. Line amounts are
// recomputed from UnitPrice, Quantity and DiscountPercent rather than trusted
// from the stored DiscountAmount/LineTotal columns.
func ComputeTotals(items []QuoteItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, it := range items {
		la := ComputeLine(it.UnitPrice, it.Quantity, it.DiscountPercent)
		subtotal = subtotal.Add(la.Total)
		discount = discount.Add(la.Discount)
	}
	return totalsFrom(subtotal, discount, taxRate)
}

func totalsFrom(subtotal, discount, taxRate decimal.Decimal) Totals {
	tax := subtotal.Mul(taxRate).Round(moneyPlaces)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		TotalAmount:    subtotal.Add(tax),
	}
}

// applyLineAmounts refreshes the derived columns of an item in place.
func applyLineAmounts(it *QuoteItem) {
	la := ComputeLine(it.UnitPrice, it.Quantity, it.DiscountPercent)
	it.DiscountAmount = la.Discount
	it.LineTotal = la.Total
}

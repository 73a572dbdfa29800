package models

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to two decimal places using
// round-half-to-even, so repeated aggregate recomputation does not
// drift systematically across many documents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// LineTotal derives a line item total from quantity and unit price.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(unitPrice))
}

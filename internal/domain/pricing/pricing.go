// Package pricing computes discounted unit prices and line totals.
//
// Money values carry two decimal places. Rounding is half away from zero
// (the behaviour of decimal.Round) and happens exactly once, at the
// unit-price step; line totals are never re-rounded, and an undiscounted
// base price passes through untouched so that a zero discount can never
// shift a price by a cent.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/catalog"
)

var hundred = decimal.NewFromInt(100)

// Quote is the frozen price for one line item.
type Quote struct {
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// UnitPrice applies a percentage discount to a base price. A non-positive
// percentage returns base exactly, un-rounded.
func UnitPrice(base, percentage decimal.Decimal) decimal.Decimal {
	if !percentage.IsPositive() {
		return base
	}
	factor := decimal.NewFromInt(1).Sub(percentage.Div(hundred))
	return base.Mul(factor).Round(2)
}

// Line computes the frozen unit price and line total for a product at the
// given discount percentage. amount is a weight in kilograms for per-kg
// products and a unit count for per-unit products; the caller is expected
// to have validated it against the product's pricing mode, so a zero amount
// yields a zero line total rather than an error here.
func Line(p *catalog.Product, percentage, amount decimal.Decimal) Quote {
	unit := UnitPrice(p.BasePrice(), percentage)
	return Quote{
		UnitPrice: unit,
		LineTotal: unit.Mul(amount),
	}
}

package discount

import "github.com/shopspring/decimal"

// Resolution is the outcome of reducing a set of applicable discounts for
// one line item.
type Resolution struct {
	// Percentage is the winning (maximum) percentage, zero when no discount
	// applies.
	Percentage decimal.Decimal
	// Contributing holds the ids of every applicable discount, not only the
	// winner. Orders record the full set for reporting.
	Contributing []int64
}

// Resolve reduces the applicable discounts to the single winning percentage.
// Ties on the maximum percentage are irrelevant for pricing since only the
// number is used; the id set is all-inclusive either way. Pure function.
func Resolve(applicable []Discount) Resolution {
	if len(applicable) == 0 {
		return Resolution{Percentage: decimal.Zero}
	}

	res := Resolution{
		Percentage:   decimal.Zero,
		Contributing: make([]int64, 0, len(applicable)),
	}
	for _, d := range applicable {
		if d.Percentage.GreaterThan(res.Percentage) {
			res.Percentage = d.Percentage
		}
		res.Contributing = append(res.Contributing, d.ID)
	}
	return res
}

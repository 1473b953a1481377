// Package discount models time-windowed percentage discounts scoped to a
// single product or a whole category, and resolves the winning percentage
// for a line item.
package discount

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Discount is a percentage reduction owned by one seller and scoped to
// exactly one of ProductID and CategoryID. Rows with both or neither set are
// malformed; the resolver tolerates them (scope matching happens in the
// repository query) instead of failing an order over bad reference data.
type Discount struct {
	ID         int64
	SellerID   int64
	ProductID  *int64
	CategoryID *int64
	Percentage decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
}

// ActiveAt reports whether the discount's window contains the given instant.
// Both boundaries are inclusive at day granularity.
func (d *Discount) ActiveAt(at time.Time) bool {
	day := at.UTC().Truncate(24 * time.Hour)
	return !day.Before(d.StartDate.UTC().Truncate(24*time.Hour)) &&
		!day.After(d.EndDate.UTC().Truncate(24*time.Hour))
}

// Repository provides tenant-scoped reads of discounts.
type Repository interface {
	// ActiveFor returns all discounts owned by sellerID that are scoped to
	// the given product or its category and whose window contains at.
	ActiveFor(ctx context.Context, sellerID, productID, categoryID int64, at time.Time) ([]Discount, error)
}

// Package order holds the order aggregate and the placement service that
// drives catalog lookup, discount resolution, and pricing inside a single
// storage transaction.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an order id does not exist.
var ErrNotFound = errors.New("order not found")

// Order is the aggregate root for one checkout. TotalPrice is the
// authoritative sum of the item totals; items carry frozen prices that are
// never recomputed after creation.
type Order struct {
	ID           int64
	SellerID     int64
	CustomerName string
	PhoneNumber  string
	Address      string
	Status       Status
	TotalPrice   decimal.Decimal
	CreatedAt    time.Time
	Items        []Item
	DiscountIDs  []int64
}

// Item is one order line. Exactly one of Weight and Quantity is set,
// matching the product's pricing mode. UnitPrice is the discounted price
// frozen at order time.
type Item struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Weight     *decimal.Decimal
	Quantity   *int32
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Repository provides reads and the single out-of-band mutation (status)
// for persisted orders.
type Repository interface {
	// GetByID returns an order with its items and linked discount ids.
	GetByID(ctx context.Context, id int64) (*Order, error)
	// UpdateStatus applies a status transition after validating it against
	// the order's current status. It touches only the status column.
	// Returns ErrNotFound or ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id int64, next Status) error
}

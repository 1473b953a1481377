package order

import (
	"context"
	"time"

	"github.com/freshkart/storefront/internal/domain/catalog"
	"github.com/freshkart/storefront/internal/domain/discount"
	"github.com/freshkart/storefront/internal/domain/seller"
)

// Tx bundles the tenant-scoped reads and writes available inside one
// atomic placement. Every read sees the transaction's snapshot; every write
// is discarded unless the whole unit commits.
type Tx interface {
	SellerBySlug(ctx context.Context, storeSlug string) (*seller.Seller, error)
	ProductBySlug(ctx context.Context, sellerID int64, slug string) (*catalog.Product, error)
	ActiveDiscounts(ctx context.Context, sellerID, productID, categoryID int64, at time.Time) ([]discount.Discount, error)

	InsertOrder(ctx context.Context, o *Order) (int64, error)
	InsertItems(ctx context.Context, orderID int64, items []Item) error
	LinkDiscounts(ctx context.Context, orderID int64, discountIDs []int64) error
}

// Storage opens atomic units of work. WithinTx commits when fn returns nil
// and rolls everything back otherwise, re-raising fn's error unchanged.
// There is no partial-commit path.
type Storage interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

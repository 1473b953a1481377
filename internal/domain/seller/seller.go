// Package seller defines the tenant boundary: every catalog and order row
// belongs to exactly one seller, and all lookups are scoped by seller id.
package seller

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no seller owns the requested store slug.
var ErrNotFound = errors.New("store not found")

// Seller is an independent store owner.
type Seller struct {
	ID        int64
	Name      string
	StoreSlug string
}

// Repository resolves sellers from their public store slug.
type Repository interface {
	GetBySlug(ctx context.Context, storeSlug string) (*Seller, error)
}

// Package catalog defines the tenant-scoped product and category entities.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a slug does not resolve within the
// requesting seller's catalog. A same-slug product owned by another seller
// must produce this same error, never that seller's product.
var ErrProductNotFound = errors.New("product not found")

// PricingMode says how a product is sold: by weight or by count.
type PricingMode int

const (
	PerKilogram PricingMode = iota
	PerUnit
)

// Category groups a seller's products and is a scope target for
// category-level discounts.
type Category struct {
	ID       int64
	SellerID int64
	Name     string
	Image    string
}

// Product is a catalog item. Exactly one of PricePerKg and PricePerUnit is
// expected to be set; when both are present the per-kilogram price wins.
type Product struct {
	ID           int64
	SellerID     int64
	CategoryID   int64
	Name         string
	Slug         string
	Description  string
	Image        string
	PricePerKg   *decimal.Decimal
	PricePerUnit *decimal.Decimal
	UnitLabel    string
	IsAvailable  bool
}

// Mode returns the product's pricing mode. Per-kilogram takes precedence
// when both prices are set.
func (p *Product) Mode() PricingMode {
	if p.PricePerKg != nil {
		return PerKilogram
	}
	return PerUnit
}

// BasePrice returns the undiscounted unit price for the product's mode.
func (p *Product) BasePrice() decimal.Decimal {
	if p.PricePerKg != nil {
		return *p.PricePerKg
	}
	if p.PricePerUnit != nil {
		return *p.PricePerUnit
	}
	return decimal.Zero
}

// Repository provides tenant-scoped reads of the catalog.
type Repository interface {
	// GetBySlug resolves a product by slug within one seller's catalog.
	// Returns ErrProductNotFound when no row matches for that seller.
	GetBySlug(ctx context.Context, sellerID int64, slug string) (*Product, error)
	// ListByStore returns a seller's available products.
	ListByStore(ctx context.Context, sellerID int64) ([]Product, error)
	// ListCategories returns a seller's categories.
	ListCategories(ctx context.Context, sellerID int64) ([]Category, error)
}

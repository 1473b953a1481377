package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/catalog"
)

const (
	productColumns = `id, seller_id, category_id, name, slug, description, image,
		price_per_kg, price_per_unit, unit_label, is_available`

	productBySlugSQL = `SELECT ` + productColumns + `
		FROM products WHERE seller_id = $1 AND slug = $2`

	productsByStoreSQL = `SELECT ` + productColumns + `
		FROM products WHERE seller_id = $1 AND is_available ORDER BY name`

	categoriesByStoreSQL = `SELECT id, seller_id, name, COALESCE(image, '')
		FROM categories WHERE seller_id = $1 ORDER BY name`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
// Every query is scoped by seller id; a slug owned by another seller is
// indistinguishable from a missing one.
type CatalogRepository struct {
	q Querier
}

// NewCatalogRepository returns a CatalogRepository over the given querier.
func NewCatalogRepository(q Querier) *CatalogRepository {
	return &CatalogRepository{q: q}
}

// GetBySlug resolves a product by slug within one seller's catalog.
func (r *CatalogRepository) GetBySlug(ctx context.Context, sellerID int64, slug string) (*catalog.Product, error) {
	return productBySlug(ctx, r.q, sellerID, slug)
}

// ListByStore returns a seller's available products ordered by name.
func (r *CatalogRepository) ListByStore(ctx context.Context, sellerID int64) ([]catalog.Product, error) {
	rows, err := r.q.Query(ctx, productsByStoreSQL, sellerID)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListCategories returns a seller's categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context, sellerID int64) ([]catalog.Category, error) {
	rows, err := r.q.Query(ctx, categoriesByStoreSQL, sellerID)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.SellerID, &c.Name, &c.Image)
		return c, err
	})
}

func productBySlug(ctx context.Context, q Querier, sellerID int64, slug string) (*catalog.Product, error) {
	rows, err := q.Query(ctx, productBySlugSQL, sellerID, slug)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", slug)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", slug)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p           catalog.Product
		perKg       decimal.NullDecimal
		perUnit     decimal.NullDecimal
		description *string
		image       *string
		unitLabel   *string
	)
	err := row.Scan(
		&p.ID, &p.SellerID, &p.CategoryID, &p.Name, &p.Slug, &description, &image,
		&perKg, &perUnit, &unitLabel, &p.IsAvailable,
	)
	if err != nil {
		return p, err
	}
	if perKg.Valid {
		p.PricePerKg = &perKg.Decimal
	}
	if perUnit.Valid {
		p.PricePerUnit = &perUnit.Decimal
	}
	if description != nil {
		p.Description = *description
	}
	if image != nil {
		p.Image = *image
	}
	if unitLabel != nil {
		p.UnitLabel = *unitLabel
	}
	return p, nil
}

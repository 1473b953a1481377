package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/freshkart/storefront/internal/domain/seller"
)

const sellerBySlugSQL = `SELECT id, name, store_slug FROM sellers WHERE store_slug = $1`

var _ seller.Repository = (*SellerRepository)(nil)

// SellerRepository implements seller.Repository backed by PostgreSQL.
type SellerRepository struct {
	q Querier
}

// NewSellerRepository returns a SellerRepository over the given querier.
func NewSellerRepository(q Querier) *SellerRepository {
	return &SellerRepository{q: q}
}

// GetBySlug resolves a seller from its public store slug.
func (r *SellerRepository) GetBySlug(ctx context.Context, storeSlug string) (*seller.Seller, error) {
	return sellerBySlug(ctx, r.q, storeSlug)
}

func sellerBySlug(ctx context.Context, q Querier, storeSlug string) (*seller.Seller, error) {
	var s seller.Seller
	err := q.QueryRow(ctx, sellerBySlugSQL, storeSlug).Scan(&s.ID, &s.Name, &s.StoreSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, seller.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get seller %q", storeSlug)
	}
	return &s, nil
}

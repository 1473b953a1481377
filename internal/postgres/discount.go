package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/freshkart/storefront/internal/domain/discount"
)

// activeDiscountsSQL matches discounts scoped to the product or its
// category whose inclusive date window contains the reference day.
const activeDiscountsSQL = `SELECT id, seller_id, product_id, category_id, percentage, start_date, end_date
	FROM discounts
	WHERE seller_id = $1
	  AND (product_id = $2 OR category_id = $3)
	  AND start_date <= $4::date
	  AND end_date >= $4::date`

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	q Querier
}

// NewDiscountRepository returns a DiscountRepository over the given querier.
func NewDiscountRepository(q Querier) *DiscountRepository {
	return &DiscountRepository{q: q}
}

// ActiveFor returns the discounts applicable to a product at the given
// reference instant.
func (r *DiscountRepository) ActiveFor(ctx context.Context, sellerID, productID, categoryID int64, at time.Time) ([]discount.Discount, error) {
	return activeDiscounts(ctx, r.q, sellerID, productID, categoryID, at)
}

func activeDiscounts(ctx context.Context, q Querier, sellerID, productID, categoryID int64, at time.Time) ([]discount.Discount, error) {
	rows, err := q.Query(ctx, activeDiscountsSQL, sellerID, productID, categoryID, at.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "query active discounts")
	}
	return pgx.CollectRows(rows, scanDiscount)
}

func scanDiscount(row pgx.CollectableRow) (discount.Discount, error) {
	var d discount.Discount
	err := row.Scan(&d.ID, &d.SellerID, &d.ProductID, &d.CategoryID, &d.Percentage, &d.StartDate, &d.EndDate)
	return d, err
}

package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshkart/storefront/internal/domain/catalog"
	"github.com/freshkart/storefront/internal/domain/discount"
	"github.com/freshkart/storefront/internal/domain/order"
	"github.com/freshkart/storefront/internal/domain/seller"
)

const (
	insertOrderSQL = `INSERT INTO orders (seller_id, customer_name, phone_number, address, status, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	insertItemSQL = `INSERT INTO order_items (order_id, product_id, weight, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	linkDiscountSQL = `INSERT INTO order_discounts (order_id, discount_id) VALUES ($1, $2)`
)

var _ order.Storage = (*Store)(nil)

// Store implements order.Storage on a pgx connection pool. Each WithinTx
// call maps to exactly one database transaction; fn's reads and writes all
// go through that transaction, so a failure anywhere discards every
// partial write and concurrent readers never observe an order without its
// items.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTx runs fn inside one transaction, committing on nil and rolling
// back otherwise. fn's error is returned unchanged.
func (s *Store) WithinTx(ctx context.Context, fn func(tx order.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&storeTx{q: tx})
	})
}

// storeTx binds the placement reads and writes to one pgx transaction.
type storeTx struct {
	q pgx.Tx
}

var _ order.Tx = (*storeTx)(nil)

func (t *storeTx) SellerBySlug(ctx context.Context, storeSlug string) (*seller.Seller, error) {
	return sellerBySlug(ctx, t.q, storeSlug)
}

func (t *storeTx) ProductBySlug(ctx context.Context, sellerID int64, slug string) (*catalog.Product, error) {
	return productBySlug(ctx, t.q, sellerID, slug)
}

func (t *storeTx) ActiveDiscounts(ctx context.Context, sellerID, productID, categoryID int64, at time.Time) ([]discount.Discount, error) {
	return activeDiscounts(ctx, t.q, sellerID, productID, categoryID, at)
}

func (t *storeTx) InsertOrder(ctx context.Context, o *order.Order) (int64, error) {
	var id int64
	err := t.q.QueryRow(ctx, insertOrderSQL,
		o.SellerID, o.CustomerName, o.PhoneNumber, o.Address, string(o.Status), o.TotalPrice, o.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert order")
	}
	return id, nil
}

func (t *storeTx) InsertItems(ctx context.Context, orderID int64, items []order.Item) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(insertItemSQL,
			orderID, item.ProductID, item.Weight, item.Quantity, item.UnitPrice, item.TotalPrice,
		)
	}
	if err := t.q.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "insert order items")
	}
	return nil
}

func (t *storeTx) LinkDiscounts(ctx context.Context, orderID int64, discountIDs []int64) error {
	batch := &pgx.Batch{}
	for _, id := range discountIDs {
		batch.Queue(linkDiscountSQL, orderID, id)
	}
	if err := t.q.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "link order discounts")
	}
	return nil
}

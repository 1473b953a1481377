package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshkart/storefront/internal/domain/order"
)

const (
	orderByIDSQL = `SELECT id, seller_id, customer_name, phone_number, COALESCE(address, ''), status, total_price, created_at
		FROM orders WHERE id = $1`

	orderItemsSQL = `SELECT id, order_id, product_id, weight, quantity, unit_price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY id`

	orderDiscountIDsSQL = `SELECT discount_id FROM order_discounts WHERE order_id = $1 ORDER BY discount_id`

	orderStatusForUpdateSQL = `SELECT status FROM orders WHERE id = $1 FOR UPDATE`

	// Status changes touch only the status column; totals and item rows are
	// immutable history.
	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository over the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns an order with its items and linked discount ids.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := r.pool.QueryRow(ctx, orderByIDSQL, id).Scan(
		&o.ID, &o.SellerID, &o.CustomerName, &o.PhoneNumber, &o.Address, &status, &o.TotalPrice, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}
	o.Status = order.Status(status)

	rows, err := r.pool.Query(ctx, orderItemsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d items", id)
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		var item order.Item
		err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Weight, &item.Quantity, &item.UnitPrice, &item.TotalPrice)
		return item, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan order %d items", id)
	}

	rows, err = r.pool.Query(ctx, orderDiscountIDsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d discounts", id)
	}
	o.DiscountIDs, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, errors.Wrapf(err, "scan order %d discounts", id)
	}

	return &o, nil
}

// UpdateStatus validates the transition against the current row under a row
// lock and applies it.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, next order.Status) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, orderStatusForUpdateSQL, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return order.ErrNotFound
			}
			return errors.Wrapf(err, "lock order %d", id)
		}

		if !order.Status(current).CanTransitionTo(next) {
			return order.ErrInvalidTransition
		}

		if _, err := tx.Exec(ctx, updateOrderStatusSQL, id, string(next)); err != nil {
			return errors.Wrapf(err, "update order %d status", id)
		}
		return nil
	})
}

package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/catalog"
	"github.com/freshkart/storefront/internal/domain/discount"
	"github.com/freshkart/storefront/internal/domain/pricing"
)

// Sentinel validation errors for missing request fields.
var (
	ErrMissingCustomerName = errors.New("customerName is required")
	ErrMissingPhoneNumber  = errors.New("phoneNumber is required")
	ErrMissingStoreSlug    = errors.New("storeSlug is required")
	ErrEmptyItems          = errors.New("items required")
)

// InvalidLineItemError indicates a line item whose shape does not match its
// product's pricing mode, or is malformed on its own.
type InvalidLineItemError struct {
	Slug   string
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("item %q: %s", e.Slug, e.Reason)
}

// ProductNotFoundError indicates a line item slug that does not resolve
// within the order's store.
type ProductNotFoundError struct {
	Slug string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.Slug)
}

// IsValidation reports whether err is caller-correctable bad input.
func IsValidation(err error) bool {
	var ile *InvalidLineItemError
	return errors.Is(err, ErrMissingCustomerName) ||
		errors.Is(err, ErrMissingPhoneNumber) ||
		errors.Is(err, ErrMissingStoreSlug) ||
		errors.Is(err, ErrEmptyItems) ||
		errors.As(err, &ile)
}

// LineItem is one requested cart entry. Exactly one of Quantity and Weight
// must be positive.
type LineItem struct {
	Slug     string
	Quantity int32
	Weight   decimal.Decimal
}

// PlaceOrderRequest is the input for one checkout against one store.
type PlaceOrderRequest struct {
	StoreSlug    string
	CustomerName string
	PhoneNumber  string
	Address      string
	Items        []LineItem
}

func (r *PlaceOrderRequest) validate() error {
	if r.CustomerName == "" {
		return ErrMissingCustomerName
	}
	if r.PhoneNumber == "" {
		return ErrMissingPhoneNumber
	}
	if r.StoreSlug == "" {
		return ErrMissingStoreSlug
	}
	if len(r.Items) == 0 {
		return ErrEmptyItems
	}
	for _, item := range r.Items {
		if item.Slug == "" {
			return &InvalidLineItemError{Slug: item.Slug, Reason: "slug is required"}
		}
		hasQty := item.Quantity > 0
		hasWeight := item.Weight.IsPositive()
		switch {
		case hasQty && hasWeight:
			return &InvalidLineItemError{Slug: item.Slug, Reason: "specify either quantity or weight, not both"}
		case !hasQty && !hasWeight:
			return &InvalidLineItemError{Slug: item.Slug, Reason: "a positive quantity or weight is required"}
		}
	}
	return nil
}

// PlaceOrderResult reports a successful placement.
type PlaceOrderResult struct {
	OrderID int64
	Total   decimal.Decimal
}

// Service places orders. One Service instance is shared across requests;
// it holds no per-request state.
type Service struct {
	store Storage
	now   func() time.Time
}

// NewService creates the placement service over the given storage.
func NewService(store Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// PlaceOrder validates the request shape, then runs the whole placement in
// one transaction: resolve the seller, and per line item resolve the
// product, reduce its applicable discounts to the winning percentage, and
// freeze the discounted price. Discount ids contributing to any item are
// linked to the order once each. On any error nothing is persisted.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var result PlaceOrderResult
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		sel, err := tx.SellerBySlug(ctx, req.StoreSlug)
		if err != nil {
			return err
		}

		// One reference instant for every item in the order, captured at
		// the start of the resolution loop.
		now := s.now()

		total := decimal.Zero
		items := make([]Item, 0, len(req.Items))
		seen := make(map[int64]struct{})
		var contributing []int64

		for _, li := range req.Items {
			p, err := tx.ProductBySlug(ctx, sel.ID, li.Slug)
			if err != nil {
				if errors.Is(err, catalog.ErrProductNotFound) {
					return &ProductNotFoundError{Slug: li.Slug}
				}
				return errors.Wrapf(err, "resolve product %q", li.Slug)
			}

			item := Item{ProductID: p.ID}
			var amount decimal.Decimal
			switch p.Mode() {
			case catalog.PerKilogram:
				if !li.Weight.IsPositive() {
					return &InvalidLineItemError{Slug: li.Slug, Reason: "product is sold by weight"}
				}
				amount = li.Weight
				w := li.Weight
				item.Weight = &w
			case catalog.PerUnit:
				if li.Quantity <= 0 {
					return &InvalidLineItemError{Slug: li.Slug, Reason: "product is sold by unit"}
				}
				amount = decimal.NewFromInt(int64(li.Quantity))
				q := li.Quantity
				item.Quantity = &q
			}

			ds, err := tx.ActiveDiscounts(ctx, sel.ID, p.ID, p.CategoryID, now)
			if err != nil {
				return errors.Wrapf(err, "resolve discounts for %q", li.Slug)
			}
			res := discount.Resolve(ds)
			for _, id := range res.Contributing {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					contributing = append(contributing, id)
				}
			}

			quote := pricing.Line(p, res.Percentage, amount)
			item.UnitPrice = quote.UnitPrice
			item.TotalPrice = quote.LineTotal

			total = total.Add(quote.LineTotal)
			items = append(items, item)
		}

		o := &Order{
			SellerID:     sel.ID,
			CustomerName: req.CustomerName,
			PhoneNumber:  req.PhoneNumber,
			Address:      req.Address,
			Status:       StatusPending,
			TotalPrice:   total,
			CreatedAt:    now,
		}
		orderID, err := tx.InsertOrder(ctx, o)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}
		if err := tx.InsertItems(ctx, orderID, items); err != nil {
			return errors.Wrap(err, "insert order items")
		}
		if err := tx.LinkDiscounts(ctx, orderID, contributing); err != nil {
			return errors.Wrap(err, "link discounts")
		}

		result = PlaceOrderResult{OrderID: orderID, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

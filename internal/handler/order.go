package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/order"
	"github.com/freshkart/storefront/internal/domain/seller"
)

type placeOrderRequest struct {
	CustomerName string           `json:"customerName"`
	PhoneNumber  string           `json:"phoneNumber"`
	Address      string           `json:"address"`
	StoreSlug    string           `json:"storeSlug"`
	Items        []placeOrderItem `json:"items"`
}

type placeOrderItem struct {
	Slug     string          `json:"slug"`
	Quantity int32           `json:"quantity"`
	Weight   decimal.Decimal `json:"weight"`
}

type placeOrderResponse struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"orderId"`
}

// placeOrder is the core boundary operation: one checkout against one store,
// all-or-nothing.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.LineItem{
			Slug:     item.Slug,
			Quantity: item.Quantity,
			Weight:   item.Weight,
		}
	}

	result, err := h.placer.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		StoreSlug:    req.StoreSlug,
		CustomerName: req.CustomerName,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		Items:        items,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{Success: true, OrderID: result.OrderID})
}

func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var pnf *order.ProductNotFoundError
	switch {
	case order.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, seller.ErrNotFound):
		writeError(w, http.StatusNotFound, "store not found")
	case errors.As(err, &pnf):
		writeError(w, http.StatusNotFound, pnf.Error())
	default:
		internalError(w, r, err)
	}
}

type orderItemResponse struct {
	ProductID  int64    `json:"productId"`
	Weight     *float64 `json:"weight,omitempty"`
	Quantity   *int32   `json:"quantity,omitempty"`
	UnitPrice  float64  `json:"unitPrice"`
	TotalPrice float64  `json:"totalPrice"`
}

type orderResponse struct {
	ID           int64               `json:"id"`
	SellerID     int64               `json:"sellerId"`
	CustomerName string              `json:"customerName"`
	PhoneNumber  string              `json:"phoneNumber"`
	Address      string              `json:"address,omitempty"`
	Status       string              `json:"status"`
	TotalPrice   float64             `json:"totalPrice"`
	CreatedAt    string              `json:"createdAt"`
	Items        []orderItemResponse `json:"items"`
	DiscountIDs  []int64             `json:"discountIds"`
}

// getOrder returns a placed order with its frozen item prices. Consumers
// must treat those prices as immutable history.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, err)
		return
	}

	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ProductID:  item.ProductID,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
			TotalPrice: item.TotalPrice.InexactFloat64(),
		}
		if item.Weight != nil {
			weight := item.Weight.InexactFloat64()
			items[i].Weight = &weight
		}
		items[i].Quantity = item.Quantity
	}

	discountIDs := o.DiscountIDs
	if discountIDs == nil {
		discountIDs = []int64{}
	}

	writeJSON(w, http.StatusOK, orderResponse{
		ID:           o.ID,
		SellerID:     o.SellerID,
		CustomerName: o.CustomerName,
		PhoneNumber:  o.PhoneNumber,
		Address:      o.Address,
		Status:       string(o.Status),
		TotalPrice:   o.TotalPrice.InexactFloat64(),
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
		Items:        items,
		DiscountIDs:  discountIDs,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// updateOrderStatus applies an admin status transition. It never touches
// totals or item rows.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, next); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "invalid status transition")
		default:
			internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

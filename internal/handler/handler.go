// Package handler exposes the storefront HTTP API. Handlers decode JSON,
// delegate to the domain, and map the error taxonomy onto status codes:
// validation 400, missing store/product/order 404, illegal status
// transition 409, anything else 500 with a generic message.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/freshkart/storefront/internal/domain/catalog"
	"github.com/freshkart/storefront/internal/domain/discount"
	"github.com/freshkart/storefront/internal/domain/order"
	"github.com/freshkart/storefront/internal/domain/seller"
)

// OrderPlacer places orders. Implemented by *order.Service.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.PlaceOrderResult, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in catalog
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler carries the domain dependencies for all routes.
type Handler struct {
	sellers      seller.Repository
	products     catalog.Repository
	discounts    discount.Repository
	orders       order.Repository
	placer       OrderPlacer
	imageBaseURL string
}

// New constructs a Handler.
func New(
	cfg Config,
	sellers seller.Repository,
	products catalog.Repository,
	discounts discount.Repository,
	orders order.Repository,
	placer OrderPlacer,
) *Handler {
	return &Handler{
		sellers:      sellers,
		products:     products,
		discounts:    discounts,
		orders:       orders,
		placer:       placer,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("POST /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("GET /api/stores/{slug}/products", h.listStoreProducts)
	mux.HandleFunc("GET /api/stores/{slug}/products/{productSlug}", h.getStoreProduct)
	mux.HandleFunc("GET /api/stores/{slug}/categories", h.listStoreCategories)
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// internalError logs the cause and responds 500 without leaking it.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	return h.imageBaseURL + "/" + path
}

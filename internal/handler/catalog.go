package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/freshkart/storefront/internal/domain/catalog"
	"github.com/freshkart/storefront/internal/domain/discount"
	"github.com/freshkart/storefront/internal/domain/pricing"
	"github.com/freshkart/storefront/internal/domain/seller"
)

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type productResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	CategoryID      int64    `json:"categoryId"`
	Description     string   `json:"description,omitempty"`
	Image           string   `json:"image,omitempty"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
	UnitLabel       string   `json:"unitLabel,omitempty"`
	IsAvailable     bool     `json:"isAvailable"`
}

// listStoreProducts returns a store's available products with their current
// discounted prices, computed with the same resolver the order engine uses.
func (h *Handler) listStoreProducts(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.resolveStore(w, r)
	if !ok {
		return
	}

	products, err := h.products.ListByStore(r.Context(), sel.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	now := time.Now()
	resp := make([]productResponse, 0, len(products))
	for i := range products {
		pr, err := h.productResponse(r, &products[i], now)
		if err != nil {
			internalError(w, r, err)
			return
		}
		resp = append(resp, pr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// getStoreProduct returns a single product by slug within a store.
func (h *Handler) getStoreProduct(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.resolveStore(w, r)
	if !ok {
		return
	}

	p, err := h.products.GetBySlug(r.Context(), sel.ID, r.PathValue("productSlug"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}

	pr, err := h.productResponse(r, p, time.Now())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

// listStoreCategories returns a store's categories.
func (h *Handler) listStoreCategories(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.resolveStore(w, r)
	if !ok {
		return
	}

	categories, err := h.products.ListCategories(r.Context(), sel.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{ID: c.ID, Name: c.Name, Image: h.imageURL(c.Image)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolveStore maps the slug path segment to a seller, writing the 404
// itself when absent.
func (h *Handler) resolveStore(w http.ResponseWriter, r *http.Request) (*seller.Seller, bool) {
	sel, err := h.sellers.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, seller.ErrNotFound) {
			writeError(w, http.StatusNotFound, "store not found")
			return nil, false
		}
		internalError(w, r, err)
		return nil, false
	}
	return sel, true
}

func (h *Handler) productResponse(r *http.Request, p *catalog.Product, now time.Time) (productResponse, error) {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Image:       h.imageURL(p.Image),
		Price:       p.BasePrice().InexactFloat64(),
		UnitLabel:   p.UnitLabel,
		IsAvailable: p.IsAvailable,
	}

	ds, err := h.discounts.ActiveFor(r.Context(), p.SellerID, p.ID, p.CategoryID, now)
	if err != nil {
		return resp, errors.Wrapf(err, "discounts for product %q", p.Slug)
	}
	res := discount.Resolve(ds)
	if res.Percentage.IsPositive() {
		discounted := pricing.UnitPrice(p.BasePrice(), res.Percentage).InexactFloat64()
		resp.DiscountedPrice = &discounted
	}
	return resp, nil
}

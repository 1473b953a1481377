package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshkart/storefront/internal/domain/catalog"
	"github.com/freshkart/storefront/internal/domain/discount"
	"github.com/freshkart/storefront/internal/domain/order"
	"github.com/freshkart/storefront/internal/domain/seller"
)

type mockSellerRepo struct {
	getBySlug func(ctx context.Context, slug string) (*seller.Seller, error)
}

func (m *mockSellerRepo) GetBySlug(ctx context.Context, slug string) (*seller.Seller, error) {
	return m.getBySlug(ctx, slug)
}

type mockCatalogRepo struct {
	getBySlug      func(ctx context.Context, sellerID int64, slug string) (*catalog.Product, error)
	listByStore    func(ctx context.Context, sellerID int64) ([]catalog.Product, error)
	listCategories func(ctx context.Context, sellerID int64) ([]catalog.Category, error)
}

func (m *mockCatalogRepo) GetBySlug(ctx context.Context, sellerID int64, slug string) (*catalog.Product, error) {
	return m.getBySlug(ctx, sellerID, slug)
}

func (m *mockCatalogRepo) ListByStore(ctx context.Context, sellerID int64) ([]catalog.Product, error) {
	return m.listByStore(ctx, sellerID)
}

func (m *mockCatalogRepo) ListCategories(ctx context.Context, sellerID int64) ([]catalog.Category, error) {
	return m.listCategories(ctx, sellerID)
}

type mockDiscountRepo struct {
	activeFor func(ctx context.Context, sellerID, productID, categoryID int64, at time.Time) ([]discount.Discount, error)
}

func (m *mockDiscountRepo) ActiveFor(ctx context.Context, sellerID, productID, categoryID int64, at time.Time) ([]discount.Discount, error) {
	return m.activeFor(ctx, sellerID, productID, categoryID, at)
}

type mockOrderRepo struct {
	getByID      func(ctx context.Context, id int64) (*order.Order, error)
	updateStatus func(ctx context.Context, id int64, next order.Status) error
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return m.getByID(ctx, id)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id int64, next order.Status) error {
	return m.updateStatus(ctx, id, next)
}

type mockPlacer struct {
	placeOrder func(ctx context.Context, req order.PlaceOrderRequest) (*order.PlaceOrderResult, error)
}

func (m *mockPlacer) PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.PlaceOrderResult, error) {
	return m.placeOrder(ctx, req)
}

type deps struct {
	sellers   *mockSellerRepo
	products  *mockCatalogRepo
	discounts *mockDiscountRepo
	orders    *mockOrderRepo
	placer    *mockPlacer
}

func newTestServer(t *testing.T, d deps) *httptest.Server {
	t.Helper()
	h := New(Config{}, d.sellers, d.products, d.discounts, d.orders, d.placer)
	mux := http.NewServeMux()
	h.Register(mux)
	return newServerFromMux(t, mux)
}

func newServerFromMux(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestPlaceOrderEndpoint(t *testing.T) {
	validBody := `{
		"storeSlug": "green-valley",
		"customerName": "Asha Rao",
		"phoneNumber": "+91-9000000000",
		"address": "12 MG Road",
		"items": [{"slug": "tomato", "weight": 2.5}]
	}`

	tests := []struct {
		name       string
		body       string
		placeErr   error
		wantStatus int
		wantError  string
	}{
		{
			name:       "created",
			body:       validBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"storeSlug": `,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "validation error",
			body:       validBody,
			placeErr:   order.ErrMissingCustomerName,
			wantStatus: http.StatusBadRequest,
			wantError:  "customerName is required",
		},
		{
			name:       "unknown store",
			body:       validBody,
			placeErr:   seller.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "store not found",
		},
		{
			name:       "unknown product",
			body:       validBody,
			placeErr:   &order.ProductNotFoundError{Slug: "tomato"},
			wantStatus: http.StatusNotFound,
			wantError:  `product "tomato" not found`,
		},
		{
			name:       "internal failure is not leaked",
			body:       validBody,
			placeErr:   errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placer := &mockPlacer{
				placeOrder: func(_ context.Context, req order.PlaceOrderRequest) (*order.PlaceOrderResult, error) {
					if tt.placeErr != nil {
						return nil, tt.placeErr
					}
					assert.Equal(t, "green-valley", req.StoreSlug)
					require.Len(t, req.Items, 1)
					assert.True(t, decimal.RequireFromString("2.5").Equal(req.Items[0].Weight))
					return &order.PlaceOrderResult{
						OrderID: 42,
						Total:   decimal.RequireFromString("200.00"),
					}, nil
				},
			}
			srv := newTestServer(t, deps{placer: placer})

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/orders", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, true, body["success"])
			assert.EqualValues(t, 42, body["orderId"])
		})
	}
}

func TestGetOrderEndpoint(t *testing.T) {
	weight := decimal.RequireFromString("2.5")
	qty := int32(3)
	placed := &order.Order{
		ID:           42,
		SellerID:     1,
		CustomerName: "Asha Rao",
		PhoneNumber:  "+91-9000000000",
		Status:       order.StatusPending,
		TotalPrice:   decimal.RequireFromString("245.00"),
		CreatedAt:    time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
		Items: []order.Item{
			{ProductID: 10, Weight: &weight, UnitPrice: decimal.RequireFromString("80.00"), TotalPrice: decimal.RequireFromString("200.00")},
			{ProductID: 11, Quantity: &qty, UnitPrice: decimal.RequireFromString("15.00"), TotalPrice: decimal.RequireFromString("45.00")},
		},
		DiscountIDs: []int64{1, 2},
	}

	orders := &mockOrderRepo{
		getByID: func(_ context.Context, id int64) (*order.Order, error) {
			if id != 42 {
				return nil, order.ErrNotFound
			}
			return placed, nil
		},
	}
	srv := newTestServer(t, deps{orders: orders})

	t.Run("found", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/orders/42", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.EqualValues(t, 42, body["id"])
		assert.Equal(t, "Pending", body["status"])
		assert.Equal(t, 245.0, body["totalPrice"])
		assert.Equal(t, "2026-06-15T10:00:00Z", body["createdAt"])
		assert.Equal(t, []any{1.0, 2.0}, body["discountIds"])

		items, ok := body["items"].([]any)
		require.True(t, ok)
		require.Len(t, items, 2)
		first := items[0].(map[string]any)
		assert.Equal(t, 2.5, first["weight"])
		assert.Equal(t, 80.0, first["unitPrice"])
		second := items[1].(map[string]any)
		assert.Equal(t, 3.0, second["quantity"])
		assert.Equal(t, 45.0, second["totalPrice"])
	})

	t.Run("not found", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/orders/7", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "order not found", body["error"])
	})

	t.Run("non numeric id", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/orders/abc", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid order id", body["error"])
	})
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		repoErr    error
		wantStatus int
		wantError  string
	}{
		{
			name:       "transition applied",
			body:       `{"status": "Confirmed"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown status value",
			body:       `{"status": "Returned"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  `unknown status "Returned"`,
		},
		{
			name:       "order not found",
			body:       `{"status": "Confirmed"}`,
			repoErr:    order.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "order not found",
		},
		{
			name:       "illegal transition",
			body:       `{"status": "Delivered"}`,
			repoErr:    order.ErrInvalidTransition,
			wantStatus: http.StatusConflict,
			wantError:  "invalid status transition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &mockOrderRepo{
				updateStatus: func(_ context.Context, id int64, next order.Status) error {
					assert.EqualValues(t, 42, id)
					return tt.repoErr
				},
			}
			srv := newTestServer(t, deps{orders: orders})

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/orders/42/status", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, true, body["success"])
		})
	}
}

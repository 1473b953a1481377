//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"
)

// Seeded green-valley prices: tomato 40.00/kg, spinach-bunch 25.00/unit,
// cow-milk-1l 60.00/unit, paneer 320.00/kg. An active 20% Vegetables
// category discount and a 10% tomato product discount overlap, so
// vegetables sell at 20% off with both discount rows attributed.

func TestPlaceOrder_PerUnitItem(t *testing.T) {
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "cow-milk-1l", Quantity: 2},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	placed := decodeJSON[placeOrderResponse](t, resp)
	if !placed.Success {
		t.Error("expected success=true")
	}
	if placed.OrderID <= 0 {
		t.Fatalf("order id: got %d, want > 0", placed.OrderID)
	}

	order := fetchOrder(t, placed.OrderID)
	// 2 x 60.00, no dairy discount.
	if order.TotalPrice != 120 {
		t.Errorf("total: got %v, want 120", order.TotalPrice)
	}
	if len(order.DiscountIDs) != 0 {
		t.Errorf("discount ids: got %v, want none", order.DiscountIDs)
	}
}

func TestPlaceOrder_WeightItemWithDiscount(t *testing.T) {
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "tomato", Weight: 2.5},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	placed := decodeJSON[placeOrderResponse](t, resp)
	order := fetchOrder(t, placed.OrderID)

	// 40.00/kg at 20% off = 32.00/kg, x2.5kg = 80.00.
	if order.TotalPrice != 80 {
		t.Errorf("total: got %v, want 80", order.TotalPrice)
	}
	if len(order.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(order.Items))
	}
	item := order.Items[0]
	if item.UnitPrice != 32 {
		t.Errorf("unit price: got %v, want 32", item.UnitPrice)
	}
	if item.Weight == nil || *item.Weight != 2.5 {
		t.Errorf("weight: got %v, want 2.5", item.Weight)
	}
	if item.Quantity != nil {
		t.Errorf("quantity should be absent for a weight item, got %v", *item.Quantity)
	}
	// Both the category and the product discount contributed.
	if len(order.DiscountIDs) != 2 {
		t.Errorf("discount ids: got %v, want 2 entries", order.DiscountIDs)
	}
}

func TestPlaceOrder_MixedItemsTotal(t *testing.T) {
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "tomato", Weight: 1},          // 32.00
		orderItemRequest{Slug: "spinach-bunch", Quantity: 2}, // 20.00 x2 = 40.00
		orderItemRequest{Slug: "paneer", Weight: 0.5},        // 160.00
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	placed := decodeJSON[placeOrderResponse](t, resp)
	order := fetchOrder(t, placed.OrderID)

	if order.TotalPrice != 232 {
		t.Errorf("total: got %v, want 232", order.TotalPrice)
	}
	if order.Status != "Pending" {
		t.Errorf("status: got %q, want Pending", order.Status)
	}

	var sum float64
	for _, item := range order.Items {
		sum += item.TotalPrice
	}
	if sum != order.TotalPrice {
		t.Errorf("item totals sum %v != order total %v", sum, order.TotalPrice)
	}
}

func TestPlaceOrder_UnknownStore(t *testing.T) {
	req := validOrder(orderItemRequest{Slug: "tomato", Weight: 1})
	req.StoreSlug = "no-such-store"
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_CrossTenantSlug(t *testing.T) {
	// alphonso-mango belongs to sunrise-organics, not green-valley; the
	// whole order must be rejected, including the valid tomato line.
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "tomato", Weight: 1},
		orderItemRequest{Slug: "alphonso-mango", Weight: 1},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_SameSlugDifferentStores(t *testing.T) {
	// Both stores sell "tomato" at different prices; each order must
	// resolve against its own store's catalog.
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "tomato", Weight: 1},
	))
	defer resp.Body.Close()
	placed := decodeJSON[placeOrderResponse](t, resp)
	greenValley := fetchOrder(t, placed.OrderID)

	req := orderRequest{
		StoreSlug:    "sunrise-organics",
		CustomerName: "Ravi Kumar",
		PhoneNumber:  "+91-9111111111",
		Items:        []orderItemRequest{{Slug: "tomato", Weight: 1}},
	}
	resp2 := doPost(t, "/api/orders", req)
	defer resp2.Body.Close()
	placed2 := decodeJSON[placeOrderResponse](t, resp2)
	sunrise := fetchOrder(t, placed2.OrderID)

	// green-valley: 40.00 at 20% off = 32.00; sunrise: 48.00, no discount.
	if greenValley.TotalPrice != 32 {
		t.Errorf("green-valley total: got %v, want 32", greenValley.TotalPrice)
	}
	if sunrise.TotalPrice != 48 {
		t.Errorf("sunrise total: got %v, want 48", sunrise.TotalPrice)
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*orderRequest)
	}{
		{"missing customer name", func(r *orderRequest) { r.CustomerName = "" }},
		{"missing phone number", func(r *orderRequest) { r.PhoneNumber = "" }},
		{"missing store slug", func(r *orderRequest) { r.StoreSlug = "" }},
		{"empty items", func(r *orderRequest) { r.Items = nil }},
		{"both quantity and weight", func(r *orderRequest) {
			r.Items = []orderItemRequest{{Slug: "tomato", Quantity: 1, Weight: 1}}
		}},
		{"neither quantity nor weight", func(r *orderRequest) {
			r.Items = []orderItemRequest{{Slug: "tomato"}}
		}},
		{"weight for a per-unit product", func(r *orderRequest) {
			r.Items = []orderItemRequest{{Slug: "spinach-bunch", Weight: 1.5}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrder(orderItemRequest{Slug: "tomato", Weight: 1})
			tt.mutate(&req)
			resp := doPost(t, "/api/orders", req)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			body := decodeJSON[errorResponse](t, resp)
			if body.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/999999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestOrderStatusLifecycle(t *testing.T) {
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "cow-milk-1l", Quantity: 1},
	))
	defer resp.Body.Close()
	placed := decodeJSON[placeOrderResponse](t, resp)
	path := orderPath(placed.OrderID)

	// Pending -> Confirmed -> Shipped -> Delivered.
	for _, next := range []string{"Confirmed", "Shipped", "Delivered"} {
		r := doPost(t, path+"/status", map[string]string{"status": next})
		if r.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: expected 200, got %d", next, r.StatusCode)
		}
		r.Body.Close()
	}

	order := fetchOrder(t, placed.OrderID)
	if order.Status != "Delivered" {
		t.Errorf("status: got %q, want Delivered", order.Status)
	}

	// Delivered is terminal.
	r := doPost(t, path+"/status", map[string]string{"status": "Cancelled"})
	defer r.Body.Close()
	if r.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", r.StatusCode)
	}
}

func TestOrderStatus_SkippingAState(t *testing.T) {
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "cow-milk-1l", Quantity: 1},
	))
	defer resp.Body.Close()
	placed := decodeJSON[placeOrderResponse](t, resp)

	// Pending -> Shipped skips Confirmed.
	r := doPost(t, orderPath(placed.OrderID)+"/status", map[string]string{"status": "Shipped"})
	defer r.Body.Close()
	if r.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", r.StatusCode)
	}

	// The stored status is untouched.
	order := fetchOrder(t, placed.OrderID)
	if order.Status != "Pending" {
		t.Errorf("status: got %q, want Pending", order.Status)
	}
}

func TestOrderStatus_UnknownValue(t *testing.T) {
	resp := doPost(t, "/api/orders", validOrder(
		orderItemRequest{Slug: "cow-milk-1l", Quantity: 1},
	))
	defer resp.Body.Close()
	placed := decodeJSON[placeOrderResponse](t, resp)

	r := doPost(t, orderPath(placed.OrderID)+"/status", map[string]string{"status": "Returned"})
	defer r.Body.Close()
	if r.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", r.StatusCode)
	}
}

func fetchOrder(t *testing.T, id int64) orderResponse {
	t.Helper()

	resp := doGet(t, orderPath(id))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET order %d: expected 200, got %d", id, resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}

func orderPath(id int64) string {
	return "/api/orders/" + strconv.FormatInt(id, 10)
}

package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomloop/storefront/internal/domain/coupon"
	"github.com/ecomloop/storefront/internal/domain/product"
)

var testCatalog = []product.Product{
	{ID: "waffle", Name: "Waffle", Price: 5000, Featured: true},
	{ID: "brownie", Name: "Brownie", Price: 2500},
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()

	resp, err := http.Get(env.server.URL + "/api/products/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []productResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, 50.0, body[0].Price)
}

func TestListFeatured(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()

	resp, err := http.Get(env.server.URL + "/api/products/featured")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []productResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "waffle", body[0].ID)
}

func TestListRecommended(t *testing.T) {
	env := newTestEnv(
		product.Product{ID: "waffle", Name: "Waffle", Price: 5000, Category: "bakery"},
		product.Product{ID: "brownie", Name: "Brownie", Price: 2500, Category: "bakery"},
		product.Product{ID: "scarf", Name: "Scarf", Price: 1500, Category: "apparel"},
		product.Product{ID: "mug", Name: "Mug", Price: 900, Category: "kitchen"},
	)
	defer env.Close()

	resp, err := http.Get(env.server.URL + "/api/products/recommended")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 3)
	// The projection carries only the fields the storefront tile needs.
	for _, p := range body {
		assert.Contains(t, p, "id")
		assert.Contains(t, p, "price")
		assert.NotContains(t, p, "category")
		assert.NotContains(t, p, "featured")
	}
}

func TestListByCategory(t *testing.T) {
	env := newTestEnv(
		product.Product{ID: "waffle", Name: "Waffle", Price: 5000, Category: "bakery"},
		product.Product{ID: "scarf", Name: "Scarf", Price: 1500, Category: "apparel"},
	)
	defer env.Close()

	resp, err := http.Get(env.server.URL + "/api/products/category/bakery")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Products []productResponse `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "waffle", body.Products[0].ID)
	assert.Equal(t, 50.0, body.Products[0].Price)
}

func TestListByCategory_Empty(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()

	resp, err := http.Get(env.server.URL + "/api/products/category/garden")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckoutSession_Unauthenticated(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()

	resp := postJSON(t, newClient(t), env.server.URL+"/api/payments/checkout-session", map[string]any{
		"items": []checkoutItem{{ProductID: "waffle", Quantity: 1}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckoutSession(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()
	client := newClient(t)
	signUp(t, client, env.server.URL, "ada@example.com")

	resp := postJSON(t, client, env.server.URL+"/api/payments/checkout-session", map[string]any{
		"items": []checkoutItem{
			{ProductID: "waffle", Quantity: 2},
			{ProductID: "brownie", Quantity: 1},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string  `json:"sessionId"`
		Total     float64 `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.SessionID)
	assert.Equal(t, 125.0, body.Total)
}

func TestCheckoutSession_WithCoupon(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()
	client := newClient(t)
	signUp(t, client, env.server.URL, "ada@example.com")

	// Find the signed-up user's id via the profile endpoint.
	profile, err := client.Get(env.server.URL + "/api/users/profile")
	require.NoError(t, err)
	var u userResponse
	require.NoError(t, json.NewDecoder(profile.Body).Decode(&u))
	profile.Body.Close()

	err = env.coupons.Replace(t.Context(), &coupon.Coupon{
		Code:            "FRESHAB23CD",
		OwnerID:         u.ID,
		DiscountPercent: 10,
		ExpiresAt:       time.Now().Add(time.Hour),
		Active:          true,
	})
	require.NoError(t, err)

	resp := postJSON(t, client, env.server.URL+"/api/payments/checkout-session", map[string]any{
		"items":      []checkoutItem{{ProductID: "waffle", Quantity: 2}},
		"couponCode": "FRESHAB23CD",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 90.0, body.Total)
}

func TestCheckoutSession_BadCarts(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()
	client := newClient(t)
	signUp(t, client, env.server.URL, "ada@example.com")

	tests := []struct {
		name  string
		items []checkoutItem
	}{
		{"empty cart", nil},
		{"unknown product", []checkoutItem{{ProductID: "ghost", Quantity: 1}}},
		{"zero quantity", []checkoutItem{{ProductID: "waffle", Quantity: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, client, env.server.URL+"/api/payments/checkout-session", map[string]any{
				"items": tt.items,
			})
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCheckoutSuccess(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()
	client := newClient(t)
	signUp(t, client, env.server.URL, "ada@example.com")

	resp := postJSON(t, client, env.server.URL+"/api/payments/checkout-session", map[string]any{
		"items": []checkoutItem{{ProductID: "waffle", Quantity: 1}},
	})
	var sess struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	resp.Body.Close()

	env.gateway.pay(sess.SessionID)

	done := postJSON(t, client, env.server.URL+"/api/payments/checkout-success", map[string]string{
		"sessionId": sess.SessionID,
	})
	defer done.Body.Close()
	require.Equal(t, http.StatusOK, done.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.NewDecoder(done.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.OrderID)

	// Finalizing again returns the same order.
	again := postJSON(t, client, env.server.URL+"/api/payments/checkout-success", map[string]string{
		"sessionId": sess.SessionID,
	})
	defer again.Body.Close()
	require.Equal(t, http.StatusOK, again.StatusCode)
	var repeat struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.NewDecoder(again.Body).Decode(&repeat))
	assert.Equal(t, body.OrderID, repeat.OrderID)
}

func TestCheckoutSuccess_Unpaid(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()
	client := newClient(t)
	signUp(t, client, env.server.URL, "ada@example.com")

	resp := postJSON(t, client, env.server.URL+"/api/payments/checkout-session", map[string]any{
		"items": []checkoutItem{{ProductID: "waffle", Quantity: 1}},
	})
	var sess struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	resp.Body.Close()

	done := postJSON(t, client, env.server.URL+"/api/payments/checkout-success", map[string]string{
		"sessionId": sess.SessionID,
	})
	defer done.Body.Close()
	assert.Equal(t, http.StatusPaymentRequired, done.StatusCode)
}

func TestCheckoutSuccess_GatewayError(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()
	client := newClient(t)
	signUp(t, client, env.server.URL, "ada@example.com")

	done := postJSON(t, client, env.server.URL+"/api/payments/checkout-success", map[string]string{
		"sessionId": "cs_unknown",
	})
	defer done.Body.Close()
	assert.Equal(t, http.StatusBadGateway, done.StatusCode)
}

func TestCheckoutSuccess_MissingSessionID(t *testing.T) {
	env := newTestEnv(testCatalog...)
	defer env.Close()
	client := newClient(t)
	signUp(t, client, env.server.URL, "ada@example.com")

	done := postJSON(t, client, env.server.URL+"/api/payments/checkout-success", map[string]string{})
	defer done.Body.Close()
	assert.Equal(t, http.StatusBadRequest, done.StatusCode)
}

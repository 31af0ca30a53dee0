package orderapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodcart-backend/internal/domain/order"
	"github.com/your-org/foodcart-backend/internal/infrastructure/orderapi"
)

func newServer(t *testing.T, handler http.HandlerFunc) *orderapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return orderapi.NewClient(server.URL+"/", 2*time.Second, nil)
}

func TestSubmitOrder(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))

		var req order.OrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vendor-1", req.VendorID)
		assert.Equal(t, 3, req.PaymentMethodID)
		if assert.Len(t, req.Items, 1) {
			assert.Equal(t, "Pack: 1", req.Items[0].PackID)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Order created","data":{"order_id":"ord-9","total":"4680"}}`))
	})

	conf, err := client.SubmitOrder(t.Context(), "tok", order.OrderRequest{
		VendorID:        "vendor-1",
		PaymentMethodID: 3,
		Items:           []order.OrderLine{{PackID: "Pack: 1", ItemID: "x", Quantity: 1, Price: decimal.NewFromInt(10)}},
		IdempotencyKey:  "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-9", conf.OrderID)
	assert.True(t, decimal.NewFromInt(4680).Equal(conf.Total))
}

func TestSubmitOrder_missingOrderID(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.SubmitOrder(t.Context(), "tok", order.OrderRequest{})
	var serviceErr *order.ServiceError
	require.ErrorAs(t, err, &serviceErr)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "nested error message", status: 422, body: `{"error":{"message":"Vendor is closed"}}`, wantMessage: "Vendor is closed"},
		{name: "message field", status: 400, body: `{"message":"Item sold out"}`, wantMessage: "Item sold out"},
		{name: "error string", status: 409, body: `{"error":"Promo already used"}`, wantMessage: "Promo already used"},
		{name: "plain text", status: 503, body: `maintenance`, wantMessage: "maintenance"},
		{name: "empty body", status: 500, body: ``, wantMessage: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.RedeemPromo(t.Context(), "tok", "CODE")

			var serviceErr *order.ServiceError
			require.ErrorAs(t, err, &serviceErr)
			assert.Equal(t, tt.status, serviceErr.StatusCode)
			assert.Equal(t, tt.wantMessage, serviceErr.Message)
		})
	}
}

func TestListSavedCarts(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[
			{"id":"sc-1","user_id":"u1","vendor_id":"v1","brown_bag_quantity":2,"active_pack_id":"Pack: 2","items":[
				{"pack_id":"Pack: 1","item_id":"a","name":"Jollof","price":"1500","quantity":1,"business_id":"v1"},
				{"pack_id":"Pack: 2","item_id":"b","name":"Suya","price":"800","quantity":2,"business_id":"v1"},
				{"pack_id":"Pack: 1","item_id":"c","name":"Plantain","price":"500","quantity":3,"business_id":"v1"}
			]}
		]`))
	})

	carts, err := client.ListSavedCarts(t.Context(), "tok")
	require.NoError(t, err)
	require.Len(t, carts, 1)

	snap := carts[0].Cart
	require.Len(t, snap.Packs, 2)
	assert.Equal(t, "Pack: 1", snap.Packs[0].ID)
	assert.Len(t, snap.Packs[0].Items, 2)
	assert.Equal(t, "Pack: 2", snap.ActivePackID)
	assert.Equal(t, 2, snap.BrownBagQuantity)
}

func TestSaveCart_sendsActivePack(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/saved-carts", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Pack: 2", body["active_pack_id"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"sc-7","vendor_id":"v1","active_pack_id":"Pack: 2","items":[
			{"pack_id":"Pack: 1","item_id":"a","name":"Jollof","price":"1500","quantity":1,"business_id":"v1"},
			{"pack_id":"Pack: 2","item_id":"b","name":"Suya","price":"800","quantity":2,"business_id":"v1"}
		]}`))
	})

	saved, err := client.SaveCart(t.Context(), "tok", order.SaveCartRequest{
		VendorID: "v1",
		Items: []order.OrderLine{
			{PackID: "Pack: 1", ItemID: "a", Quantity: 1, Price: decimal.NewFromInt(1500)},
			{PackID: "Pack: 2", ItemID: "b", Quantity: 2, Price: decimal.NewFromInt(800)},
		},
		ActivePackID: "Pack: 2",
	})
	require.NoError(t, err)
	assert.Equal(t, "sc-7", saved.ID)
	assert.Equal(t, "Pack: 2", saved.Cart.ActivePackID)
}

func TestListSavedCarts_empty(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	carts, err := client.ListSavedCarts(t.Context(), "tok")
	require.NoError(t, err)
	assert.Empty(t, carts)
}

func TestDeleteSavedCart(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/saved-carts/sc-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteSavedCart(t.Context(), "tok", "sc-1"))
	require.EqualError(t, client.DeleteSavedCart(t.Context(), "tok", ""), "saved cart id is empty")
}

func TestCancelledContext(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.SaveCart(ctx, "tok", order.SaveCartRequest{VendorID: "v"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

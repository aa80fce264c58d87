package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
	cookie string
	auth   string
}

func setupBackend(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
		}
		if c, err := r.Cookie(SessionCookieName); err == nil {
			rec.cookie = c.Value
		}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		requests = append(requests, rec)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL, WithHTTPClient(srv.Client())), &requests
}

func TestGetCart_MapsResponse(t *testing.T) {
	client, requests := setupBackend(t, http.StatusOK, `{
		"username": "asha",
		"role": "CUSTOMER",
		"cart": {
			"overall_total_price": 2200,
			"products": [
				{"product_id": 1, "image_url": "a.png", "name": "Socks", "description": "wool", "price_per_unit": 500, "quantity": 2, "total_price": 1000},
				{"product_id": 2, "image_url": "", "name": "Hat", "description": "felt", "price_per_unit": 1200.5, "quantity": 1, "total_price": 1200.5}
			]
		}
	}`)

	cart, err := client.As(SessionCookie("tok")).GetCart(context.Background(), "asha")
	require.NoError(t, err)

	assert.Equal(t, "asha", cart.Owner)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(1), cart.Items[0].ProductID)
	assert.Equal(t, "Socks", cart.Items[0].Name)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1000).Equal(cart.Items[0].LineTotal))
	assert.True(t, decimal.RequireFromString("1200.5").Equal(cart.Items[1].UnitPrice))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/cart/items", req.path)
	assert.Equal(t, "username=asha", req.query)
	assert.Equal(t, "tok", req.cookie)
}

func TestCartMutations_RequestShape(t *testing.T) {
	client, requests := setupBackend(t, http.StatusOK, ``)
	ctx := context.Background()

	require.NoError(t, client.UpdateCartItem(ctx, "asha", 5, 3))
	require.NoError(t, client.RemoveCartItem(ctx, "asha", 5))
	require.NoError(t, client.AddCartItem(ctx, "asha", 7, 1))

	require.Len(t, *requests, 3)

	update := (*requests)[0]
	assert.Equal(t, http.MethodPut, update.method)
	assert.Equal(t, "/api/cart/update", update.path)
	assert.Equal(t, "asha", update.body["username"])
	assert.Equal(t, float64(5), update.body["productId"])
	assert.Equal(t, float64(3), update.body["quantity"])

	remove := (*requests)[1]
	assert.Equal(t, http.MethodDelete, remove.method)
	assert.Equal(t, "/api/cart/delete", remove.path)
	assert.NotContains(t, remove.body, "quantity")

	add := (*requests)[2]
	assert.Equal(t, http.MethodPost, add.method)
	assert.Equal(t, "/api/cart/add", add.path)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		unauthorized bool
		notFound     bool
	}{
		{"unauthorized", http.StatusUnauthorized, true, false},
		{"not found", http.StatusNotFound, false, true},
		{"server error", http.StatusInternalServerError, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setupBackend(t, tt.status, "boom")

			_, err := client.ListOrders(context.Background())
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "boom", statusErr.Body)
			assert.Equal(t, tt.unauthorized, errors.Is(err, ErrUnauthorized))
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
		})
	}
}

func TestListOrdersAndStats(t *testing.T) {
	client, _ := setupBackend(t, http.StatusOK, `{
		"username": "asha",
		"role": "CUSTOMER",
		"orders": {"products": [
			{"order_id": "order_1", "product_id": 3, "name": "Hat", "description": "felt", "quantity": 1, "price_per_unit": 150, "total_price": 150, "image_url": null}
		]}
	}`)

	history, err := client.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "asha", history.Owner)
	require.Len(t, history.Records, 1)
	assert.Equal(t, "order_1", history.Records[0].OrderID)
	assert.Nil(t, history.Records[0].ImageURL)

	statsClient, requests := setupBackend(t, http.StatusOK, `{"total_orders": 4, "total_spending": 5120.75}`)
	stats, err := statsClient.OrderStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.True(t, decimal.RequireFromString("5120.75").Equal(stats.TotalSpending))
	assert.Equal(t, "/api/orders/stats", (*requests)[0].path)
}

func TestCreatePaymentOrder(t *testing.T) {
	client, requests := setupBackend(t, http.StatusOK, "order_Nx81\n")

	id, err := client.CreatePaymentOrder(context.Background(), domain.PaymentOrder{
		TotalAmount: decimal.RequireFromString("2570.50"),
		CartItems: []domain.PaymentCartItem{
			{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_Nx81", id)

	body := (*requests)[0].body
	assert.Equal(t, 2570.5, body["totalAmount"])
	items := body["cartItems"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(500), items[0].(map[string]any)["price"])
}

func TestCreatePaymentOrder_Failure(t *testing.T) {
	client, _ := setupBackend(t, http.StatusBadRequest, "amount mismatch")

	_, err := client.CreatePaymentOrder(context.Background(), domain.PaymentOrder{TotalAmount: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create order")
	assert.Contains(t, err.Error(), "amount mismatch")
}

func TestCreatePaymentOrder_EmptyID(t *testing.T) {
	client, _ := setupBackend(t, http.StatusOK, "  ")

	_, err := client.CreatePaymentOrder(context.Background(), domain.PaymentOrder{TotalAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrEmptyGatewayOrderID)
}

func TestVerifyPayment(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		verified bool
	}{
		{"accepted", http.StatusOK, "Payment verified", true},
		{"accepted boolean", http.StatusOK, "true", true},
		{"rejected boolean", http.StatusOK, "false", false},
		{"rejected status", http.StatusBadRequest, "signature mismatch", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, requests := setupBackend(t, tt.status, tt.body)

			ok, err := client.VerifyPayment(context.Background(), domain.GatewayResponse{
				GatewayOrderID:   "order_1",
				GatewayPaymentID: "pay_1",
				GatewaySignature: "sig",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.verified, ok)

			body := (*requests)[0].body
			assert.Equal(t, "order_1", body["razorpayOrderId"])
			assert.Equal(t, "pay_1", body["razorpayPaymentId"])
			assert.Equal(t, "sig", body["razorpaySignature"])
		})
	}
}

func TestVerifyPayment_NetworkError(t *testing.T) {
	client := New("http://127.0.0.1:1")

	ok, err := client.VerifyPayment(context.Background(), domain.GatewayResponse{GatewayOrderID: "order_1"})
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCredentials(t *testing.T) {
	client, requests := setupBackend(t, http.StatusOK, `[]`)
	ctx := context.Background()

	_, err := client.As(BearerToken("jwt")).ListCategories(ctx)
	require.NoError(t, err)
	_, err = client.ListCategories(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Bearer jwt", (*requests)[0].auth)
	assert.Empty(t, (*requests)[1].auth)
	assert.Empty(t, (*requests)[1].cookie)
}

func TestLogin_ExtractsSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "session-123"})
		_, _ = w.Write([]byte(`{"message": "ok", "role": "CUSTOMER", "username": "asha"}`))
	}))
	defer srv.Close()

	session, err := New(srv.URL).Login(context.Background(), "asha", "secret")
	require.NoError(t, err)

	assert.Equal(t, "asha", session.Username)
	assert.Equal(t, RoleCustomer, session.Role)
	assert.Equal(t, "session-123", session.Token)
	assert.Equal(t, SessionCookie("session-123"), session.Credentials())
}

func TestListProducts_Category(t *testing.T) {
	client, requests := setupBackend(t, http.StatusOK, `{
		"user": {"name": "asha", "role": "CUSTOMER"},
		"products": [{"product_id": 9, "name": "Lamp", "price": 899.99, "stock": 3, "images": ["l.png"]}]
	}`)

	catalog, err := client.ListProducts(context.Background(), "home decor")
	require.NoError(t, err)

	assert.Equal(t, "asha", catalog.UserName)
	require.Len(t, catalog.Products, 1)
	assert.Equal(t, int64(9), catalog.Products[0].ID)
	assert.Equal(t, "category=home+decor", (*requests)[0].query)
}

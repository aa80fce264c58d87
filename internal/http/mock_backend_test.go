package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type mockBackend struct {
	mu         sync.Mutex
	session    *backend.Session
	sessions   map[backend.Credentials]*backend.Session
	adminLogin *backend.Session
	logouts    []backend.Credentials
	listed     []domain.NewProduct
	deleted    []int64
	users      map[int64]*domain.UserAccount
	modified   []domain.UserUpdate
	business   []domain.BusinessQuery
	adminErr   error
	authErr    error
	registered []backend.Registration
	cart       *domain.CartSnapshot
	cartErr    error
	history    *domain.OrderHistory
	stats      domain.OrderStats
	ordersErr  error
	catalog    *domain.Catalog
	categories []domain.Category
	orderID    string
	verified   bool
	calls      []string
	creds      []backend.Credentials
	paidWith   []backend.Credentials
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		cart: &domain.CartSnapshot{
			Owner: "asha",
			Items: []domain.CartItem{
				{ProductID: 1, Name: "Socks", UnitPrice: decimal.NewFromInt(500), Quantity: 2, LineTotal: decimal.NewFromInt(1000)},
				{ProductID: 2, Name: "Hat", UnitPrice: decimal.NewFromInt(1200), Quantity: 1, LineTotal: decimal.NewFromInt(1200)},
			},
		},
		history: &domain.OrderHistory{
			Owner: "asha",
			Records: []domain.OrderRecord{
				{OrderID: "ORD-1", Name: "Socks", Quantity: 1, UnitPrice: decimal.NewFromInt(200), LineTotal: decimal.NewFromInt(200)},
				{OrderID: "ORD-2", Name: "Hat", Quantity: 1, UnitPrice: decimal.NewFromInt(150), LineTotal: decimal.NewFromInt(150)},
			},
		},
		stats:      domain.OrderStats{TotalOrders: 2, TotalSpending: decimal.NewFromInt(350)},
		catalog:    &domain.Catalog{UserName: "asha", UserRole: "CUSTOMER", Products: []domain.Product{{ID: 1, Name: "Socks", Price: decimal.NewFromInt(200)}}},
		categories: []domain.Category{{ID: 1, Name: "Clothing"}},
		session:    &backend.Session{Username: "asha", Role: backend.RoleCustomer, Token: "fresh-token"},
		orderID:    "order_123",
		verified:   true,
		sessions:   map[backend.Credentials]*backend.Session{},
		adminLogin: &backend.Session{Username: "root", Role: backend.RoleAdmin, Token: "admin-token"},
		users: map[int64]*domain.UserAccount{
			7: {UserID: 7, Username: "ravi", Email: "ravi@example.com", Role: "CUSTOMER"},
		},
	}
}

func (b *mockBackend) record(call string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
}

func (b *mockBackend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *mockBackend) forCreds(creds backend.Credentials) Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creds = append(b.creds, creds)
	return &boundBackend{mockBackend: b, creds: creds}
}

// boundBackend is the mock as seen through one set of credentials.
type boundBackend struct {
	*mockBackend
	creds backend.Credentials
}

func (b *boundBackend) VerifySession(context.Context) (*backend.Session, error) {
	b.record("verify_session")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.authErr != nil {
		return nil, b.authErr
	}
	if s, ok := b.sessions[b.creds]; ok {
		return s, nil
	}
	if b.creds == backend.Anonymous {
		return nil, &backend.StatusError{Method: http.MethodGet, Path: "/api/auth/verify", StatusCode: http.StatusUnauthorized}
	}
	return b.session, nil
}

func (b *boundBackend) Logout(context.Context) error {
	b.record("logout")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logouts = append(b.logouts, b.creds)
	return nil
}

func (b *boundBackend) CreatePaymentOrder(ctx context.Context, order domain.PaymentOrder) (string, error) {
	b.mu.Lock()
	b.paidWith = append(b.paidWith, b.creds)
	b.mu.Unlock()
	return b.mockBackend.CreatePaymentOrder(ctx, order)
}

func (b *boundBackend) VerifyPayment(ctx context.Context, resp domain.GatewayResponse) (bool, error) {
	b.mu.Lock()
	b.paidWith = append(b.paidWith, b.creds)
	b.mu.Unlock()
	return b.mockBackend.VerifyPayment(ctx, resp)
}

func (b *mockBackend) GetCart(_ context.Context, username string) (*domain.CartSnapshot, error) {
	b.record("get_cart:" + username)
	if b.cartErr != nil {
		return nil, b.cartErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := *b.cart
	cp.Items = append([]domain.CartItem(nil), b.cart.Items...)
	return &cp, nil
}

func (b *mockBackend) AddCartItem(_ context.Context, _ string, productID int64, quantity int) error {
	b.record("add")
	b.mu.Lock()
	defer b.mu.Unlock()
	price := decimal.NewFromInt(100)
	b.cart.Items = append(b.cart.Items, domain.CartItem{
		ProductID: productID,
		UnitPrice: price,
		Quantity:  quantity,
		LineTotal: price.Mul(decimal.NewFromInt(int64(quantity))),
	})
	return nil
}

func (b *mockBackend) UpdateCartItem(_ context.Context, _ string, productID int64, quantity int) error {
	b.record("update")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, item := range b.cart.Items {
		if item.ProductID == productID {
			b.cart.Items[i].Quantity = quantity
			b.cart.Items[i].LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		}
	}
	return nil
}

func (b *mockBackend) RemoveCartItem(_ context.Context, _ string, productID int64) error {
	b.record("remove")
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.cart.Items[:0]
	for _, item := range b.cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	b.cart.Items = kept
	return nil
}

func (b *mockBackend) CreatePaymentOrder(context.Context, domain.PaymentOrder) (string, error) {
	b.record("create_payment")
	return b.orderID, nil
}

func (b *mockBackend) VerifyPayment(context.Context, domain.GatewayResponse) (bool, error) {
	b.record("verify_payment")
	return b.verified, nil
}

func (b *mockBackend) ListOrders(context.Context) (*domain.OrderHistory, error) {
	b.record("list_orders")
	if b.ordersErr != nil {
		return nil, b.ordersErr
	}
	return b.history, nil
}

func (b *mockBackend) OrderStats(context.Context) (domain.OrderStats, error) {
	return b.stats, nil
}

func (b *mockBackend) ListProducts(_ context.Context, category string) (*domain.Catalog, error) {
	b.record("list_products:" + category)
	return b.catalog, nil
}

func (b *mockBackend) ListCategories(context.Context) ([]domain.Category, error) {
	b.record("list_categories")
	return b.categories, nil
}

func (b *mockBackend) Login(_ context.Context, username, _ string) (*backend.Session, error) {
	b.record("login:" + username)
	if b.authErr != nil {
		return nil, b.authErr
	}
	return b.session, nil
}

func (b *mockBackend) Logout(context.Context) error {
	return nil
}

func (b *mockBackend) VerifySession(context.Context) (*backend.Session, error) {
	return b.session, nil
}

func (b *mockBackend) Register(_ context.Context, r backend.Registration) error {
	b.record("register")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = append(b.registered, r)
	return b.authErr
}

func (b *mockBackend) AdminLogin(_ context.Context, username, _ string) (*backend.Session, error) {
	b.record("admin_login:" + username)
	if b.authErr != nil {
		return nil, b.authErr
	}
	return b.adminLogin, nil
}

func (b *mockBackend) AddProduct(_ context.Context, p domain.NewProduct) (*domain.ListedProduct, error) {
	b.record("add_product")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.adminErr != nil {
		return nil, b.adminErr
	}
	b.listed = append(b.listed, p)
	return &domain.ListedProduct{
		ProductID: int64(100 + len(b.listed)),
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		ImageURL:  p.ImageURL,
	}, nil
}

func (b *mockBackend) DeleteProduct(_ context.Context, productID int64) error {
	b.record("delete_product")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.adminErr != nil {
		return b.adminErr
	}
	b.deleted = append(b.deleted, productID)
	return nil
}

func (b *mockBackend) GetUser(_ context.Context, userID int64) (*domain.UserAccount, error) {
	b.record("get_user")
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[userID]
	if !ok {
		return nil, &backend.StatusError{Method: http.MethodPost, Path: "/admin/user/getbyid", StatusCode: http.StatusNotFound}
	}
	cp := *u
	return &cp, nil
}

func (b *mockBackend) ModifyUser(_ context.Context, u domain.UserUpdate) (*domain.UserAccount, error) {
	b.record("modify_user")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modified = append(b.modified, u)
	existing, ok := b.users[u.UserID]
	if !ok {
		return nil, &backend.StatusError{Method: http.MethodPut, Path: "/admin/user/modify", StatusCode: http.StatusNotFound}
	}
	if u.Email != "" {
		existing.Email = u.Email
	}
	if u.Role != "" {
		existing.Role = u.Role
	}
	cp := *existing
	return &cp, nil
}

func (b *mockBackend) Business(_ context.Context, q domain.BusinessQuery) (*domain.BusinessReport, error) {
	b.record("business:" + string(q.Period))
	b.mu.Lock()
	defer b.mu.Unlock()
	b.business = append(b.business, q)
	return &domain.BusinessReport{
		TotalRevenue: decimal.NewFromInt(5000),
		TotalOrders:  4,
		Period:       string(q.Period),
	}, nil
}

func setupRouter(t *testing.T) (*mockBackend, http.Handler) {
	t.Helper()
	b := newMockBackend()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	products := catalog.NewService(catalog.NewRedisCache(client, 5*time.Minute), zap.NewNop())

	settings := checkout.DefaultSettings()
	settings.KeyID = "rzp_test_key"
	registry := checkout.NewRegistry(settings, nil, zap.NewNop())

	shipping := domain.DefaultShippingCost
	timeout := 5 * time.Second
	router := NewRouter(Handlers{
		Admin:    NewAdminHandler(b.forCreds, products, timeout, zap.NewNop()),
		Auth:     NewAuthHandler(b.forCreds, timeout, zap.NewNop()),
		Cart:     NewCartHandler(b.forCreds, shipping, timeout, zap.NewNop()),
		Checkout: NewCheckoutHandler(b.forCreds, registry, products, shipping, timeout, zap.NewNop()),
		Orders:   NewOrdersHandler(b.forCreds, timeout, zap.NewNop()),
		Products: NewProductHandler(b.forCreds, products, timeout),
	}, b.forCreds, timeout, 1<<20)
	return b, router
}

func newRequest(method, target, body string) *http.Request {
	return newRequestAs("asha", "session-token", method, target, body)
}

// newRequestAs builds a request claiming username with the given session cookie; an
// empty value leaves that cookie out.
func newRequestAs(username, token, method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		r.AddCookie(&http.Cookie{Name: UsernameCookie, Value: username})
	}
	if token != "" {
		r.AddCookie(&http.Cookie{Name: backend.SessionCookieName, Value: token})
	}
	return r
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

package http

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
)

// Backend is the merchant API as seen by one user.
type Backend interface {
	cart.Backend
	checkout.Backend
	orders.Source
	catalog.Backend

	Login(ctx context.Context, username, password string) (*backend.Session, error)
	Logout(ctx context.Context) error
	VerifySession(ctx context.Context) (*backend.Session, error)
	Register(ctx context.Context, r backend.Registration) error

	AdminBackend
}

// AdminBackend is the administrator part of the merchant API.
type AdminBackend interface {
	AdminLogin(ctx context.Context, username, password string) (*backend.Session, error)
	AddProduct(ctx context.Context, p domain.NewProduct) (*domain.ListedProduct, error)
	DeleteProduct(ctx context.Context, productID int64) error
	GetUser(ctx context.Context, userID int64) (*domain.UserAccount, error)
	ModifyUser(ctx context.Context, u domain.UserUpdate) (*domain.UserAccount, error)
	Business(ctx context.Context, q domain.BusinessQuery) (*domain.BusinessReport, error)
}

// BackendFunc returns a Backend that authenticates with creds.
type BackendFunc func(creds backend.Credentials) Backend

// ClientBackend adapts a backend.Client.
func ClientBackend(c *backend.Client) BackendFunc {
	return func(creds backend.Credentials) Backend {
		return c.As(creds)
	}
}

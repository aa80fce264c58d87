package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/go_cart/storefront/internal/backend"
)

type Handlers struct {
	Admin    *AdminHandler
	Auth     *AuthHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Products *ProductHandler
}

// NewRouter mounts the API. Checkout and admin routes require a session the backend
// confirms through backendFor.
func NewRouter(h Handlers, backendFor BackendFunc, requestTimeout time.Duration, maxBodySize int64) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.RequestSize(maxBodySize))
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireSession := SessionMiddleware(backendFor, requestTimeout)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/register", h.Auth.Register)
			r.Get("/session", h.Auth.Session)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", h.Checkout.GetCheckout)
			r.Post("/", h.Checkout.InitiateCheckout)
			r.Post("/complete", h.Checkout.CompleteCheckout)
			r.Post("/dismiss", h.Checkout.DismissCheckout)
		})
		r.Get("/orders", h.Orders.ListOrders)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Use(RequireRole(backend.RoleAdmin))
				r.Get("/session", h.Admin.Session)
				r.Post("/products", h.Admin.AddProduct)
				r.Delete("/products/{product_id}", h.Admin.DeleteProduct)
				r.Get("/users/{user_id}", h.Admin.GetUser)
				r.Put("/users/{user_id}", h.Admin.ModifyUser)
				r.Get("/business/{period}", h.Admin.Business)
			})
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.Get)
			r.Get("/categories", h.Products.Categories)
		})
	})

	return r
}

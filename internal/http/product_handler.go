package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ProductHandler struct {
	backendFor BackendFunc
	catalog    *catalog.Service
	timeout    time.Duration
}

func NewProductHandler(backendFor BackendFunc, catalog *catalog.Service, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		backendFor: backendFor,
		catalog:    catalog,
		timeout:    timeout,
	}
}

type ProductsResponse struct {
	UserName string           `json:"user_name"`
	UserRole string           `json:"user_role"`
	Products []domain.Product `json:"products"`
}

// GET /api/v1/products?category=
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	res, err := h.catalog.Products(ctx, h.backendFor(id.Credentials), id.Username, r.URL.Query().Get("category"))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{
		UserName: res.UserName,
		UserRole: res.UserRole,
		Products: res.Products,
	})
}

// GET /api/v1/products/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	categories, err := h.catalog.Categories(ctx, h.backendFor(id.Credentials))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

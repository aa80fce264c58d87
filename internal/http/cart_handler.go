package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

const maxQuantity = 99

type CartHandler struct {
	backendFor BackendFunc
	shipping   decimal.Decimal
	timeout    time.Duration
	logger     *zap.Logger
}

func NewCartHandler(backendFor BackendFunc, shipping decimal.Decimal, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		backendFor: backendFor,
		shipping:   shipping,
		timeout:    timeout,
		logger:     logger,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"image_url"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	CanDecrement bool            `json:"can_decrement"`
}

type CartResponseDTO struct {
	Username     string          `json:"username"`
	Items        []CartItemDTO   `json:"items"`
	TotalItems   int             `json:"total_items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

func (h *CartHandler) newManager(id Identity) *cart.Manager {
	return cart.NewManager(h.backendFor(id.Credentials), id.Username,
		cart.WithShippingCost(h.shipping),
		cart.WithLogger(h.logger),
	)
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	m := h.newManager(id)
	if err := m.Load(ctx); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertSnapshot(m.Snapshot()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	// Parse request body
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Validate request
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if !validQuantity(req.Quantity) {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	m := h.newManager(id)
	if err := m.AddItem(ctx, req.ProductID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertSnapshot(m.Snapshot()))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !validQuantity(req.Quantity) {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	m := h.newManager(id)
	if err := m.SetQuantity(ctx, productID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertSnapshot(m.Snapshot()))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	m := h.newManager(id)
	if err := m.RemoveItem(ctx, productID); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertSnapshot(m.Snapshot()))
}

// validQuantity keeps quantities within what the cart page lets a customer pick.
func validQuantity(q int) bool {
	return q >= 1 && q <= maxQuantity
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func convertSnapshot(s domain.CartSnapshot) CartResponseDTO {
	items := make([]CartItemDTO, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, CartItemDTO{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Description:  item.Description,
			ImageURL:     item.ImageURL,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			LineTotal:    item.LineTotal,
			CanDecrement: item.CanDecrement(),
		})
	}
	return CartResponseDTO{
		Username:     s.Owner,
		Items:        items,
		TotalItems:   s.TotalItemCount(),
		Subtotal:     s.Subtotal(),
		ShippingCost: s.ShippingCost,
		GrandTotal:   s.GrandTotal(),
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

type CheckoutHandler struct {
	backendFor BackendFunc
	registry   *checkout.Registry
	catalog    *catalog.Service
	shipping   decimal.Decimal
	timeout    time.Duration
	logger     *zap.Logger
}

func NewCheckoutHandler(backendFor BackendFunc, registry *checkout.Registry, catalog *catalog.Service,
	shipping decimal.Decimal, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		backendFor: backendFor,
		registry:   registry,
		catalog:    catalog,
		shipping:   shipping,
		timeout:    timeout,
		logger:     logger,
	}
}

type InitiateCheckoutRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type CompleteCheckoutRequestDTO struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

type CheckoutResponseDTO struct {
	Status          string                 `json:"status"`
	AttemptID       string                 `json:"attempt_id,omitempty"`
	GatewayOrderID  string                 `json:"gateway_order_id,omitempty"`
	Widget          *checkout.WidgetConfig `json:"widget,omitempty"`
	Notices         []checkout.Notice      `json:"notices"`
	RedirectTo      string                 `json:"redirect_to,omitempty"`
	RedirectAfterMS int64                  `json:"redirect_after_ms,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	var req InitiateCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	b := h.backendFor(id.Credentials)
	m := cart.NewManager(b, id.Username, cart.WithShippingCost(h.shipping), cart.WithLogger(h.logger))
	if err := m.Load(ctx); err != nil {
		handleError(w, err)
		return
	}

	c := h.registry.Begin(id.Username, b)
	err := c.Orchestrator.ProcessPayment(ctx, m.Snapshot().PaymentOrder(), domain.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Contact: req.Contact,
	})
	if err != nil {
		logger.WithTrace(ctx, h.logger).Info("checkout not started",
			zap.String("username", id.Username),
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.describe(c))
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	c, ok := h.registry.Lookup(id.Username)
	if !ok {
		respondJSON(w, http.StatusOK, CheckoutResponseDTO{
			Status:  domain.CheckoutStatusIdle.String(),
			Notices: []checkout.Notice{},
		})
		return
	}

	respondJSON(w, http.StatusOK, h.describe(c))
}

// POST /api/v1/checkout/complete
func (h *CheckoutHandler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	var req CompleteCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_details",
			"gateway_order_id and gateway_payment_id are required")
		return
	}

	c, ok := h.registry.Resume(id.Username, h.backendFor(id.Credentials))
	if !ok {
		respondError(w, http.StatusNotFound, "checkout_not_found", "no checkout in progress")
		return
	}

	err := c.Widget.Complete(ctx, domain.GatewayResponse{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	// stock levels changed
	if h.catalog != nil {
		if err := h.catalog.Invalidate(ctx, id.Username); err != nil {
			logger.WithTrace(ctx, h.logger).Warn("catalog invalidation failed",
				zap.String("username", id.Username),
				zap.Error(err))
		}
	}

	respondJSON(w, http.StatusOK, h.describe(c))
}

// POST /api/v1/checkout/dismiss
func (h *CheckoutHandler) DismissCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	c, ok := h.registry.Lookup(id.Username)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout_not_found", "no checkout in progress")
		return
	}
	if err := c.Widget.Dismiss(); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.describe(c))
}

// describe reports the checkout state and hands over the notices raised since the last call.
func (h *CheckoutHandler) describe(c *checkout.Checkout) CheckoutResponseDTO {
	status := c.Orchestrator.Status()
	resp := CheckoutResponseDTO{
		Status:  status.String(),
		Notices: c.Notices.Drain(),
	}
	if resp.Notices == nil {
		resp.Notices = []checkout.Notice{}
	}
	if s, ok := c.Orchestrator.Session(); ok {
		resp.AttemptID = s.AttemptID
		resp.GatewayOrderID = s.GatewayOrderID
	}
	if cfg, ok := c.Widget.Config(); ok {
		resp.Widget = &cfg
	}
	if status == domain.CheckoutStatusCompleted {
		settings := h.registry.Settings()
		resp.RedirectTo = settings.RedirectTo
		resp.RedirectAfterMS = settings.RedirectDelay.Milliseconds()
		if dest, ok := c.Redirect.Destination(); ok {
			resp.RedirectTo = dest
			resp.RedirectAfterMS = 0
		}
	}
	return resp
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

func respondUnauthorized(w http.ResponseWriter) {
	respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
}

// handleError converts errors from the storefront components to HTTP responses.
func handleError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, orders.ErrLoginRequired):
		httpStatus, code = http.StatusUnauthorized, "login_required"
	case errors.Is(err, backend.ErrUnauthorized):
		httpStatus, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, backend.ErrForbidden):
		httpStatus, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, backend.ErrNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, checkout.ErrInvalidOrder), errors.Is(err, orders.ErrInvalidFilter):
		httpStatus, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, checkout.ErrPaymentInProgress):
		httpStatus, code = http.StatusConflict, "payment_in_progress"
	case errors.Is(err, checkout.ErrCheckoutCompleted):
		httpStatus, code = http.StatusConflict, "checkout_completed"
	case errors.Is(err, checkout.ErrWidgetNotOpen), errors.Is(err, checkout.ErrNotAwaitingGateway):
		httpStatus, code = http.StatusConflict, "not_awaiting_gateway"
	case errors.Is(err, checkout.ErrGatewayOrderMismatch):
		httpStatus, code = http.StatusConflict, "gateway_order_mismatch"
	case errors.Is(err, checkout.ErrVerificationFailed):
		httpStatus, code = http.StatusUnprocessableEntity, "verification_failed"
	case errors.Is(err, checkout.ErrGatewayNotConfigured), errors.Is(err, circuitbreaker.ErrOpen):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &statusErr):
		httpStatus, code = http.StatusBadGateway, "backend_error"
	default:
		httpStatus, code = http.StatusInternalServerError, "internal_error"
	}

	respondError(w, httpStatus, code, err.Error())
}

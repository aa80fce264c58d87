package checkout

import "errors"

var (
	ErrPaymentInProgress    = errors.New("payment is already in progress")
	ErrCheckoutCompleted    = errors.New("checkout already completed")
	ErrInvalidOrder         = errors.New("invalid payment order")
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrWidgetNotOpen        = errors.New("payment widget is not open")
	ErrNotAwaitingGateway   = errors.New("checkout is not waiting for the payment gateway")
	ErrVerificationFailed   = errors.New("payment verification failed")
	ErrGatewayOrderMismatch = errors.New("gateway response is for a different order")
)

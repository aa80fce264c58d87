package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// number encodes a decimal as a bare JSON number.
type number struct {
	decimal.Decimal
}

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

type paymentCartItemDTO struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     number `json:"price"`
}

type paymentOrderDTO struct {
	TotalAmount number               `json:"totalAmount"`
	CartItems   []paymentCartItemDTO `json:"cartItems"`
}

type paymentVerificationDTO struct {
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

var ErrEmptyGatewayOrderID = errors.New("backend returned an empty gateway order id")

// CreatePaymentOrder asks the backend to mint a gateway order and returns its id.
func (c *Client) CreatePaymentOrder(ctx context.Context, order domain.PaymentOrder) (string, error) {
	items := make([]paymentCartItemDTO, 0, len(order.CartItems))
	for _, item := range order.CartItems {
		items = append(items, paymentCartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     number{item.Price},
		})
	}

	raw, err := c.send(ctx, http.MethodPost, "/api/payment/create", nil, paymentOrderDTO{
		TotalAmount: number{order.TotalAmount},
		CartItems:   items,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	id := string(bytes.Trim(bytes.TrimSpace(raw.body), `"`))
	if id == "" {
		return "", ErrEmptyGatewayOrderID
	}
	return id, nil
}

// VerifyPayment reports whether the backend accepted the gateway signature.
// A non-2xx response is a failed verification, not an error.
func (c *Client) VerifyPayment(ctx context.Context, resp domain.GatewayResponse) (bool, error) {
	raw, err := c.send(ctx, http.MethodPost, "/api/payment/verify", nil, paymentVerificationDTO{
		RazorpayOrderID:   resp.GatewayOrderID,
		RazorpayPaymentID: resp.GatewayPaymentID,
		RazorpaySignature: resp.GatewaySignature,
	})
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		c.logger.Warn("payment verification rejected",
			zap.String("gateway_order_id", resp.GatewayOrderID),
			zap.Int("status", statusErr.StatusCode),
			zap.String("body", statusErr.Body))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	body := bytes.TrimSpace(raw.body)
	if bytes.EqualFold(body, []byte("false")) {
		return false, nil
	}
	return true, nil
}

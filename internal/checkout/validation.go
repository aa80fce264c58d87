package checkout

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Validate rejects orders that must never reach the backend.
func Validate(order domain.PaymentOrder) error {
	if !order.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: invalid total amount", ErrInvalidOrder)
	}
	if len(order.CartItems) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrInvalidOrder)
	}
	for _, item := range order.CartItems {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: invalid product id", ErrInvalidOrder)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: invalid quantity", ErrInvalidOrder)
		}
		if !item.Price.IsPositive() {
			return fmt.Errorf("%w: invalid product price", ErrInvalidOrder)
		}
	}
	return nil
}

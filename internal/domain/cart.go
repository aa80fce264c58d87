package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ProductID   int64
	ImageURL    string
	Name        string
	Description string
	UnitPrice   Money
	Quantity    int
	// LineTotal is the server-computed total for the line; it may include discounts
	// and is never recomputed from UnitPrice * Quantity.
	LineTotal Money
}

// CanDecrement reports whether the quantity may be lowered without dropping below one.
func (i CartItem) CanDecrement() bool {
	return i.Quantity > 1
}

// CartSnapshot is the cart as last read from the backend.
type CartSnapshot struct {
	Owner        string
	Items        []CartItem
	ShippingCost Money
}

func (s CartSnapshot) Subtotal() Money {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal)
	}
	return total
}

func (s CartSnapshot) TotalItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

func (s CartSnapshot) GrandTotal() Money {
	return s.Subtotal().Add(s.ShippingCost)
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// PaymentOrder builds the checkout request for the cart: the grand total and one line per item.
func (s CartSnapshot) PaymentOrder() PaymentOrder {
	items := make([]PaymentCartItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, PaymentCartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}
	return PaymentOrder{
		TotalAmount: s.GrandTotal(),
		CartItems:   items,
	}
}

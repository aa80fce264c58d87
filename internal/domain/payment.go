package domain

type PaymentCartItem struct {
	ProductID int64
	Quantity  int
	Price     Money
}

// PaymentOrder is what the backend needs to mint a gateway order.
type PaymentOrder struct {
	TotalAmount Money
	CartItems   []PaymentCartItem
}

// Contact prefills the payment widget.
type Contact struct {
	Name    string
	Email   string
	Contact string
}

// GatewayResponse carries the credentials the payment widget hands back on success.
type GatewayResponse struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// PaymentSession is the transient record of a single checkout attempt.
type PaymentSession struct {
	AttemptID        string
	TotalAmount      Money
	CartItems        []PaymentCartItem
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle             CheckoutStatus = "IDLE"
	CheckoutStatusCreatingOrder    CheckoutStatus = "CREATING_ORDER"
	CheckoutStatusAwaitingGateway  CheckoutStatus = "AWAITING_GATEWAY"
	CheckoutStatusVerifyingPayment CheckoutStatus = "VERIFYING_PAYMENT"
	CheckoutStatusCompleted        CheckoutStatus = "COMPLETED"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:             {CheckoutStatusCreatingOrder},
	CheckoutStatusCreatingOrder:    {CheckoutStatusAwaitingGateway, CheckoutStatusIdle},
	CheckoutStatusAwaitingGateway:  {CheckoutStatusVerifyingPayment, CheckoutStatusIdle},
	CheckoutStatusVerifyingPayment: {CheckoutStatusCompleted, CheckoutStatusIdle},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

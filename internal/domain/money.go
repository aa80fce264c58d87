package domain

import "github.com/shopspring/decimal"

// Money is a currency amount in major units (rupees).
type Money = decimal.Decimal

var minorUnitsPerMajor = decimal.NewFromInt(100)

// DefaultShippingCost is the flat shipping fee added to every cart.
var DefaultShippingCost = decimal.NewFromInt(370)

// ToMinorUnits converts an amount to the smallest currency unit (paise), rounding half away from zero.
func ToMinorUnits(amount Money) int64 {
	return amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

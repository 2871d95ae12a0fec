// Package types provides common value types shared by generators and stores.
package types

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// DefaultMoneyPlaces is the scale used when a field does not declare one.
const DefaultMoneyPlaces int32 = 2

// NewMoney creates a Money value from a float rounded to places fractional digits.
func NewMoney(f float64, places int32) Money {
	return decimal.NewFromFloat(f).Round(places)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// MoneyType is the reflect.Type of Money, used by metadata inspection.
var MoneyType = reflect.TypeOf(decimal.Decimal{})

// Package money fixes the rounding and scale rules every monetary field in
// the booking core must share: two decimal places, half-away-from-zero.
package money

import "github.com/shopspring/decimal"

// Scale is the fixed decimal scale for all persisted monetary values (spec §6).
const Scale = 2

// Round2 rounds d to Scale decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Zero is the canonical zero amount at the booking-core scale.
var Zero = decimal.Zero

// Sum rounds the sum of amounts to Scale.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round2(total)
}

// Mul multiplies a unit amount by a quantity and rounds the result.
func Mul(unit decimal.Decimal, qty int64) decimal.Decimal {
	return Round2(unit.Mul(decimal.NewFromInt(qty)))
}

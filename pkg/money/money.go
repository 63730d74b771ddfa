// Package money provides exact fixed-point arithmetic for settlement
// amounts. Running sums are always carried as smallest-unit integers;
// display-scale values only appear at the boundaries.
package money

import "github.com/shopspring/decimal"

// ToSmallest converts a display-scale amount into the unit's smallest
// indivisible integer representation, rounding half away from zero.
func (u Unit) ToSmallest(amount decimal.Decimal) int64 {
	return amount.Shift(u.Decimals).Round(0).IntPart()
}

// FromSmallest converts a smallest-unit integer back to display scale.
func (u Unit) FromSmallest(units int64) decimal.Decimal {
	return decimal.NewFromInt(units).Shift(-u.Decimals)
}

// ToSmallestUnit converts a display amount of the given currency into its
// smallest-unit integer form.
func ToSmallestUnit(amount decimal.Decimal, currency Currency) int64 {
	return currency.Unit().ToSmallest(amount)
}

// FromSmallestUnit converts a smallest-unit integer of the given currency
// back into its display amount.
func FromSmallestUnit(units int64, currency Currency) decimal.Decimal {
	return currency.Unit().FromSmallest(units)
}

// Convert translates a display amount between currencies at the supplied
// rate (target units per one source unit). Same-currency pairs are the
// identity and ignore the rate. The result keeps full precision; callers
// round only at the display boundary.
func Convert(amount decimal.Decimal, from, to Currency, rate decimal.Decimal) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.Mul(rate)
}

// RoundDisplay quantizes an amount to the unit's display precision. Chained
// in-process math must re-derive from the unrounded value instead of
// compounding this result.
func (u Unit) RoundDisplay(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(u.Decimals)
}

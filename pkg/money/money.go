package money

import "github.com/shopspring/decimal"

// Monetary amounts are carried at 4 fractional digits internally and rounded
// to 2 for persistence and display. Splits use banker's rounding so repeated
// divisions don't drift in one direction.

var Zero = decimal.Zero

// Round2 rounds to cents, half-to-even.
func Round2(d decimal.Decimal) decimal.Decimal { return d.RoundBank(2) }

// Round4 rounds to the internal precision, half-to-even.
func Round4(d decimal.Decimal) decimal.Decimal { return d.RoundBank(4) }

// Percent converts a percent figure (e.g. 45.00) to a multiplier (0.45).
func Percent(d decimal.Decimal) decimal.Decimal {
	return d.Div(decimal.NewFromInt(100))
}

// EqualCents reports whether two amounts agree once rounded to cents.
func EqualCents(a, b decimal.Decimal) bool {
	return Round2(a).Equal(Round2(b))
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool { return d.GreaterThan(decimal.Zero) }

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

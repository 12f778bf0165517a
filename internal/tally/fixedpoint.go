package tally

import (
	"github.com/shopspring/decimal"
)

var (
	// Scale is the 1e18 fixed-point scale shared by every pool index.
	Scale = decimal.New(1, 18)
	// BasisPoints bps denominator
	BasisPoints = decimal.NewFromInt(10000)
)

// DivCompensated performs the remainder-carry division used by every index
// accrual: the amount is scaled, the previous leftover is added back, and the
// integer quotient plus the new leftover are returned.
//
// delta = (amount * Scale + carry) / divisor
func DivCompensated(amount, carry, divisor decimal.Decimal) (delta, remainder decimal.Decimal) {
	if !divisor.IsPositive() {
		return decimal.Zero, carry
	}

	dividend := amount.Mul(Scale).Add(carry)
	return dividend.QuoRem(divisor, 0)
}

// IndexYield converts an index advance into asset units.
// yield = base * (index - checkpoint) / Scale, floored
func IndexYield(base, index, checkpoint decimal.Decimal) decimal.Decimal {
	diff := index.Sub(checkpoint)
	if !base.IsPositive() || !diff.IsPositive() {
		return decimal.Zero
	}

	q, _ := base.Mul(diff).QuoRem(Scale, 0)
	return q
}

// IndexCharge converts an index advance into asset units owed, rounding
// against the payer.
// charge = base * (index - checkpoint) / Scale, ceiled
func IndexCharge(base, index, checkpoint decimal.Decimal) decimal.Decimal {
	diff := index.Sub(checkpoint)
	if !base.IsPositive() || !diff.IsPositive() {
		return decimal.Zero
	}

	q, r := base.Mul(diff).QuoRem(Scale, 0)
	if r.IsPositive() {
		q = q.Add(decimal.New(1, 0))
	}

	return q
}

// BpsShare amount * bps / 10000, floored
func BpsShare(amount decimal.Decimal, bps int64) decimal.Decimal {
	if bps <= 0 || !amount.IsPositive() {
		return decimal.Zero
	}

	q, _ := amount.Mul(decimal.NewFromInt(bps)).QuoRem(BasisPoints, 0)
	return q
}

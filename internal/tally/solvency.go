package tally

import (
	"github.com/shopspring/decimal"
)

// AvailablePrincipal is the unencumbered part of a position, floored at zero.
func AvailablePrincipal(principal, encumbered decimal.Decimal) decimal.Decimal {
	available := principal.Sub(encumbered)
	if available.IsNegative() {
		return decimal.Zero
	}

	return available
}

// Solvent reports whether the debt fits under the pool loan-to-value limit.
// A pool with ltv 0 accepts deposits but never debt.
func Solvent(debt, available decimal.Decimal, ltvBps int64) bool {
	if !debt.IsPositive() {
		return true
	}
	if ltvBps <= 0 {
		return false
	}

	return debt.LessThanOrEqual(BpsShare(available, ltvBps))
}

// FeeBase is the fee-earning weight of a position.
//
// Same-asset pools subtract the position's own debt so capital borrowed
// against itself stops earning. Cross-domain pools keep locked collateral
// earning alongside whatever is unencumbered.
func FeeBase(crossDomain bool, principal, debt, locked, encumbered decimal.Decimal) decimal.Decimal {
	if crossDomain {
		return locked.Add(AvailablePrincipal(principal, encumbered))
	}

	base := principal.Sub(debt)
	if base.IsNegative() {
		return decimal.Zero
	}

	return base
}

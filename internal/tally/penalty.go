package tally

import (
	"github.com/shopspring/decimal"
)

// PenaltyRouting basis-point split of a seized penalty.
type PenaltyRouting struct {
	EnforcerBps     int64 `json:"enforcer_bps"`
	TreasuryBps     int64 `json:"treasury_bps"`
	FeeIndexBps     int64 `json:"fee_index_bps"`
	ActiveCreditBps int64 `json:"active_credit_bps"`
}

// TotalBps must not exceed 10000.
func (r PenaltyRouting) TotalBps() int64 {
	return r.EnforcerBps + r.TreasuryBps + r.FeeIndexBps + r.ActiveCreditBps
}

// PenaltyAmount computes the default penalty: a fixed percentage of the
// principal at origination, capped by what the collateral still covers beyond
// nothing and by the remaining principal. Repaying early never shrinks the
// basis, only the caps.
func PenaltyAmount(bps int64, principalAtOpen, collateral, principalRemaining decimal.Decimal) decimal.Decimal {
	penalty := BpsShare(principalAtOpen, bps)
	if penalty.GreaterThan(collateral) {
		penalty = collateral
	}
	if penalty.GreaterThan(principalRemaining) {
		penalty = principalRemaining
	}
	if penalty.IsNegative() {
		return decimal.Zero
	}

	return penalty
}

// SplitPenalty divides a penalty into enforcer, treasury, fee-index and
// active-credit shares. The enforcer, treasury and active-credit shares are
// floored bps shares; the fee-index share takes whatever is left, so the four
// always sum exactly to the penalty.
func SplitPenalty(penalty decimal.Decimal, routing PenaltyRouting) (enforcer, treasury, feeIndex, activeCredit decimal.Decimal) {
	enforcer = BpsShare(penalty, routing.EnforcerBps)
	treasury = BpsShare(penalty, routing.TreasuryBps)
	activeCredit = BpsShare(penalty, routing.ActiveCreditBps)
	feeIndex = penalty.Sub(enforcer).Sub(treasury).Sub(activeCredit)
	if feeIndex.IsNegative() {
		feeIndex = decimal.Zero
	}

	return
}

package tally

import (
	"github.com/shopspring/decimal"
)

// SecondsPerHour bucket granularity
const SecondsPerHour int64 = 3600

// HourOf returns the absolute hour of a unix timestamp.
func HourOf(ts int64) int64 {
	return ts / SecondsPerHour
}

// TimeCredit returns the maturity seconds a record has accumulated, capped at
// the gate.
func TimeCredit(now, startedAt, gate int64) int64 {
	if startedAt <= 0 || now <= startedAt {
		return 0
	}

	credit := now - startedAt
	if credit > gate {
		credit = gate
	}

	return credit
}

// Matured reports whether a record has held continuously through the gate.
func Matured(now, startedAt, gate int64) bool {
	return TimeCredit(now, startedAt, gate) >= gate
}

// ActiveWeight is the principal counted for active-credit settlement: the full
// record principal once matured, zero before.
func ActiveWeight(principal decimal.Decimal, now, startedAt, gate int64) decimal.Decimal {
	if !Matured(now, startedAt, gate) {
		return decimal.Zero
	}

	return principal
}

// MaturityHour is the hour at which a record started at startedAt crosses the
// gate.
func MaturityHour(startedAt, gate int64) int64 {
	return HourOf(startedAt) + gate/SecondsPerHour
}

// DiluteTimeCredit computes the maturity inherited when fresh principal joins
// an existing record:
//
//	credit' = old * credit / (old + fresh)
//
// so priming with dust and committing late inherits almost nothing.
func DiluteTimeCredit(oldPrincipal decimal.Decimal, credit int64, fresh decimal.Decimal) int64 {
	total := oldPrincipal.Add(fresh)
	if !total.IsPositive() || credit <= 0 {
		return 0
	}

	q, _ := oldPrincipal.Mul(decimal.NewFromInt(credit)).QuoRem(total, 0)
	return q.IntPart()
}

package tally

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	x, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return x
}

func TestDivCompensated(t *testing.T) {
	// 10 units over 3000 deposits leaves a remainder that the next accrual
	// must pick up; two accruals end exactly where one double accrual does.
	delta1, rem1 := DivCompensated(d("10"), decimal.Zero, d("3000"))
	delta2, rem2 := DivCompensated(d("10"), rem1, d("3000"))

	deltaBoth, remBoth := DivCompensated(d("20"), decimal.Zero, d("3000"))

	require.True(t, delta1.Add(delta2).Equal(deltaBoth))
	require.True(t, rem2.Equal(remBoth))

	// the carried value never exceeds the divisor
	assert.True(t, rem1.LessThan(d("3000")))
	assert.True(t, rem2.LessThan(d("3000")))
}

func TestDivCompensatedZeroDivisor(t *testing.T) {
	carry := d("7")
	delta, rem := DivCompensated(d("10"), carry, decimal.Zero)
	assert.True(t, delta.IsZero())
	assert.True(t, rem.Equal(carry))
}

func TestDivCompensatedMonotonic(t *testing.T) {
	index := decimal.Zero
	carry := decimal.Zero
	for i := 0; i < 50; i++ {
		var delta decimal.Decimal
		delta, carry = DivCompensated(d("3"), carry, d("7919"))
		next := index.Add(delta)
		require.True(t, next.GreaterThanOrEqual(index))
		index = next
	}
}

func TestIndexYield(t *testing.T) {
	index := Scale.Mul(d("2"))
	checkpoint := Scale

	assert.True(t, IndexYield(d("100"), index, checkpoint).Equal(d("100")))
	assert.True(t, IndexYield(decimal.Zero, index, checkpoint).IsZero())
	// stale checkpoints beyond the index never pay
	assert.True(t, IndexYield(d("100"), checkpoint, index).IsZero())
}

func TestBpsShare(t *testing.T) {
	assert.True(t, BpsShare(d("800"), 1000).Equal(d("80")))
	assert.True(t, BpsShare(d("80"), 6300).Equal(d("50"))) // 50.4 floored
	assert.True(t, BpsShare(d("80"), 900).Equal(d("7")))   // 7.2 floored
	assert.True(t, BpsShare(d("80"), 0).IsZero())
}

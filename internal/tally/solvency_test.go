package tally

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAvailablePrincipal(t *testing.T) {
	assert.True(t, AvailablePrincipal(d("1000"), d("300")).Equal(d("700")))
	assert.True(t, AvailablePrincipal(d("100"), d("300")).IsZero())
}

func TestSolvent(t *testing.T) {
	// deposit 1000, borrow 900 against a 9500 bps pool
	assert.True(t, Solvent(d("900"), d("1000"), 9500))
	assert.False(t, Solvent(d("951"), d("1000"), 9500))

	// ltv zero disables borrowing entirely, regardless of size
	assert.False(t, Solvent(d("1"), d("1000000000"), 0))
	assert.True(t, Solvent(decimal.Zero, decimal.Zero, 0))
}

func TestFeeBaseSameAsset(t *testing.T) {
	// deposit 1000, borrow 900: fee base 100
	assert.True(t, FeeBase(false, d("1000"), d("900"), decimal.Zero, decimal.Zero).Equal(d("100")))
	// debt above principal floors at zero
	assert.True(t, FeeBase(false, d("100"), d("900"), decimal.Zero, decimal.Zero).IsZero())
}

func TestFeeBaseCrossDomain(t *testing.T) {
	// locked collateral keeps earning next to the unencumbered rest
	base := FeeBase(true, d("1000"), decimal.Zero, d("400"), d("600"))
	assert.True(t, base.Equal(d("800")))
}

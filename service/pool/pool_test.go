package pool

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/core"
	"tally/internal/tally"
)

func d(v string) decimal.Decimal {
	r, _ := decimal.NewFromString(v)
	return r
}

func TestAccrueFeeEmptyPoolDropsAmount(t *testing.T) {
	ctx := context.Background()
	s := New()

	pool := &core.Pool{AssetID: "btc"}
	require.Nil(t, s.AccrueFee(ctx, pool, d("100"), "test"))

	assert.True(t, pool.FeeIndex.IsZero())
	assert.True(t, pool.FeeIndexRemainder.IsZero())
}

func TestAccrueFeeCarriesRemainder(t *testing.T) {
	ctx := context.Background()
	s := New()

	pool := &core.Pool{AssetID: "btc", TotalDeposits: d("3")}

	// 10 over 3 deposits leaves a remainder of 1e18
	require.Nil(t, s.AccrueFee(ctx, pool, d("10"), "test"))
	first := pool.FeeIndex

	// the carried remainder tops the second accrual up to an exact third
	require.Nil(t, s.AccrueFee(ctx, pool, d("5"), "test"))
	assert.True(t, pool.FeeIndex.GreaterThan(first))

	total := pool.FeeIndex.Mul(d("3")).Add(pool.FeeIndexRemainder)
	assert.True(t, total.Equal(d("15").Mul(tally.Scale)))
}

func TestAccrueActiveCreditNeedsMaturedPrincipal(t *testing.T) {
	ctx := context.Background()
	s := New()

	pool := &core.Pool{AssetID: "btc", ActiveCreditPrincipalTotal: d("500")}
	require.Nil(t, s.AccrueActiveCredit(ctx, pool, d("40"), "test"))
	assert.True(t, pool.ActiveCreditIndex.IsZero())

	pool.ActiveCreditMaturedTotal = d("400")
	require.Nil(t, s.AccrueActiveCredit(ctx, pool, d("40"), "test"))
	assert.True(t, pool.ActiveCreditIndex.IsPositive())
}

func TestAccrueMaintenanceSpreadsOverDebt(t *testing.T) {
	ctx := context.Background()
	s := New()

	at := time.Unix(1700000000, 0)
	pool := &core.Pool{AssetID: "btc"}

	// no debt: stamp moves, index stays
	require.Nil(t, s.AccrueMaintenance(ctx, pool, d("7"), at))
	assert.Equal(t, at, pool.MaintenanceAccruedAt)
	assert.True(t, pool.MaintenanceIndex.IsZero())

	pool.TotalDebt = d("70")
	require.Nil(t, s.AccrueMaintenance(ctx, pool, d("7"), at.Add(time.Hour)))
	assert.True(t, pool.MaintenanceIndex.Equal(tally.Scale.Div(d("10"))))
}

func TestAdvanceMaturityFoldsBuckets(t *testing.T) {
	ctx := context.Background()
	s := New()

	now := time.Unix(1700000000, 0)
	pool := &core.Pool{AssetID: "btc"}

	// first advance only anchors the cursor
	require.Nil(t, s.AdvanceMaturity(ctx, pool, now))
	assert.True(t, pool.ActiveCreditMaturedTotal.IsZero())

	hour := tally.HourOf(now.Unix())
	require.True(t, pool.PendingBuckets.Place(hour+2, d("100")))
	require.True(t, pool.PendingBuckets.Place(hour+5, d("50")))

	require.Nil(t, s.AdvanceMaturity(ctx, pool, now.Add(3*time.Hour)))
	assert.True(t, pool.ActiveCreditMaturedTotal.Equal(d("100")))

	require.Nil(t, s.AdvanceMaturity(ctx, pool, now.Add(48*time.Hour)))
	assert.True(t, pool.ActiveCreditMaturedTotal.Equal(d("150")))
}

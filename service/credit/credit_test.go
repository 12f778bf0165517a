package credit

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/core"
	"tally/internal/tally"
	"tally/pkg/guard"
)

func d(v string) decimal.Decimal {
	r, _ := decimal.NewFromString(v)
	return r
}

const gate = 24 * tally.SecondsPerHour

func anchoredPool(now int64) *core.Pool {
	pool := &core.Pool{AssetID: "btc"}
	pool.PendingBuckets.AdvanceTo(tally.HourOf(now))
	return pool
}

func TestJoinCreditFreshRecord(t *testing.T) {
	now := time.Unix(1700000000, 0).Unix()
	pool := anchoredPool(now)

	state := joinCredit(pool, core.CreditState{}, d("100"), now, gate)

	assert.Equal(t, now, state.StartedAt)
	assert.True(t, state.Principal.Equal(d("100")))
	assert.True(t, pool.ActiveCreditPrincipalTotal.Equal(d("100")))
	assert.True(t, pool.PendingBuckets.Pending().Equal(d("100")))
	assert.True(t, pool.ActiveCreditMaturedTotal.IsZero())
}

func TestJoinCreditDilutesInheritedMaturity(t *testing.T) {
	now := time.Unix(1700000000, 0).Unix()
	pool := anchoredPool(now)

	// 100 held for 20 hours, joined by 900 fresh
	state := core.CreditState{
		Principal: d("100"),
		StartedAt: now - 20*tally.SecondsPerHour,
	}
	require.True(t, pool.PendingBuckets.Place(tally.MaturityHour(state.StartedAt, gate), state.Principal))
	pool.ActiveCreditPrincipalTotal = state.Principal

	state = joinCredit(pool, state, d("900"), now, gate)

	// inherited credit is 100*20h/1000 = 2h
	credit := tally.TimeCredit(now, state.StartedAt, gate)
	assert.Equal(t, 2*tally.SecondsPerHour, credit)
	assert.True(t, state.Principal.Equal(d("1000")))
	assert.True(t, pool.ActiveCreditPrincipalTotal.Equal(d("1000")))
	assert.True(t, pool.PendingBuckets.Pending().Equal(d("1000")))
}

func TestJoinCreditReturnsMaturedToPending(t *testing.T) {
	now := time.Unix(1700000000, 0).Unix()
	pool := anchoredPool(now)

	// fully matured record, bucket long folded
	state := core.CreditState{
		Principal: d("100"),
		StartedAt: now - 50*tally.SecondsPerHour,
	}
	pool.ActiveCreditPrincipalTotal = state.Principal
	pool.ActiveCreditMaturedTotal = state.Principal

	state = joinCredit(pool, state, d("100"), now, gate)

	// half the gate is inherited; the merged record waits for the rest
	credit := tally.TimeCredit(now, state.StartedAt, gate)
	assert.Equal(t, 12*tally.SecondsPerHour, credit)
	assert.True(t, pool.ActiveCreditMaturedTotal.IsZero())
	assert.True(t, pool.PendingBuckets.Pending().Equal(d("200")))
}

func TestLeaveCreditFromPending(t *testing.T) {
	now := time.Unix(1700000000, 0).Unix()
	pool := anchoredPool(now)

	state := joinCredit(pool, core.CreditState{}, d("100"), now, gate)
	state = leaveCredit(pool, state, d("40"), gate)

	assert.True(t, state.Principal.Equal(d("60")))
	assert.Equal(t, now, state.StartedAt)
	assert.True(t, pool.PendingBuckets.Pending().Equal(d("60")))
	assert.True(t, pool.ActiveCreditPrincipalTotal.Equal(d("60")))
}

type fakePoolStore struct {
	core.IPoolStore
	pool *core.Pool
}

func (s *fakePoolStore) Find(ctx context.Context, assetID string) (*core.Pool, error) {
	return s.pool, nil
}

type fakePositionStore struct {
	core.IPositionStore
	position *core.Position
}

func (s *fakePositionStore) Find(ctx context.Context, accountKey, assetID string) (*core.Position, error) {
	return s.position, nil
}

type fakeEncumbranceStore struct {
	core.IEncumbranceStore
}

func (s *fakeEncumbranceStore) Find(ctx context.Context, accountKey, assetID string) (*core.Encumbrance, error) {
	return &core.Encumbrance{AccountKey: accountKey, AssetID: assetID}, nil
}

type fakeLedger struct {
	core.ILedgerService
}

func (fakeLedger) Settle(ctx context.Context, pool *core.Pool, position *core.Position, at time.Time) error {
	return nil
}

func TestOpenLendRejectsWhileIndebted(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	cfg := &core.Config{}
	cfg.App.TimeGateHours = 24

	// 1000 deposited, 900 borrowed at 95% loan-to-value: deploying the whole
	// principal as reserves would leave the debt with no cover
	pool := anchoredPool(now.Unix())
	pool.LTVBps = 9500
	position := &core.Position{
		AccountKey: "alice",
		AssetID:    "btc",
		Principal:  d("1000"),
		Debt:       d("900"),
	}

	s := &creditService{
		cfg:          cfg,
		guard:        guard.New(),
		pools:        &fakePoolStore{pool: pool},
		positions:    &fakePositionStore{position: position},
		encumbrances: &fakeEncumbranceStore{},
		ledger:       fakeLedger{},
	}

	err := s.OpenLend(ctx, "alice", "btc", d("1000"), now)
	assert.Equal(t, core.ErrSolvencyViolation, err)

	// lending 53 leaves 947 available, and 947 at 95% only covers 899
	err = s.OpenLend(ctx, "alice", "btc", d("53"), now)
	assert.Equal(t, core.ErrSolvencyViolation, err)
}

func TestLeaveCreditFromMatured(t *testing.T) {
	now := time.Unix(1700000000, 0).Unix()
	pool := anchoredPool(now)

	state := core.CreditState{
		Principal: d("100"),
		StartedAt: now - 50*tally.SecondsPerHour,
	}
	pool.ActiveCreditPrincipalTotal = state.Principal
	pool.ActiveCreditMaturedTotal = state.Principal

	state = leaveCredit(pool, state, d("100"), gate)

	assert.True(t, state.Principal.IsZero())
	assert.Equal(t, int64(0), state.StartedAt)
	assert.True(t, pool.ActiveCreditMaturedTotal.IsZero())
	assert.True(t, pool.ActiveCreditPrincipalTotal.IsZero())
}

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/core"
	"tally/internal/tally"
	poolservice "tally/service/pool"
)

func d(v string) decimal.Decimal {
	r, _ := decimal.NewFromString(v)
	return r
}

type fakeEncumbranceStore struct {
	core.IEncumbranceStore
	records map[string]*core.Encumbrance
}

func (s *fakeEncumbranceStore) Find(ctx context.Context, accountKey, assetID string) (*core.Encumbrance, error) {
	if e, ok := s.records[accountKey+":"+assetID]; ok {
		return e, nil
	}

	return &core.Encumbrance{AccountKey: accountKey, AssetID: assetID}, nil
}

func (s *fakeEncumbranceStore) put(e *core.Encumbrance) {
	if s.records == nil {
		s.records = make(map[string]*core.Encumbrance)
	}
	s.records[e.AccountKey+":"+e.AssetID] = e
}

func newTestService(encumbrances core.IEncumbranceStore) *ledgerService {
	cfg := &core.Config{}
	cfg.App.TimeGateHours = 24

	return &ledgerService{
		cfg:          cfg,
		encumbrances: encumbrances,
		poolz:        poolservice.New(),
	}
}

func TestSettleNormalizedFeeBase(t *testing.T) {
	ctx := context.Background()
	encumbrances := &fakeEncumbranceStore{}
	s := newTestService(encumbrances)

	at := time.Unix(1700000000, 0)

	// 1000 deposited, 900 borrowed against it: only 100 earns
	pool := &core.Pool{
		AssetID:       "btc",
		TotalDeposits: d("1000"),
		TotalDebt:     d("900"),
		FeeIndex:      tally.Scale, // one unit of yield per deposit unit
	}
	position := &core.Position{
		AccountKey: "alice",
		AssetID:    "btc",
		Principal:  d("1000"),
		Debt:       d("900"),
	}

	require.Nil(t, s.Settle(ctx, pool, position, at))

	assert.True(t, position.AccruedYield.Equal(d("100")))
	assert.True(t, position.FeeIndexCheckpoint.Equal(pool.FeeIndex))
}

func TestSettleCrossDomainKeepsLockedEarning(t *testing.T) {
	ctx := context.Background()
	encumbrances := &fakeEncumbranceStore{}
	encumbrances.put(&core.Encumbrance{
		AccountKey:   "alice",
		AssetID:      "eth",
		DirectLocked: d("300"),
	})
	s := newTestService(encumbrances)

	pool := &core.Pool{
		AssetID:       "eth",
		CrossDomain:   true,
		TotalDeposits: d("1000"),
		FeeIndex:      tally.Scale,
	}
	position := &core.Position{
		AccountKey: "alice",
		AssetID:    "eth",
		Principal:  d("1000"),
	}

	require.Nil(t, s.Settle(ctx, pool, position, time.Unix(1700000000, 0)))

	// locked 300 + unlocked 700 both earn
	assert.True(t, position.AccruedYield.Equal(d("1000")))
}

func TestSettleZeroBaseStillAdvancesCheckpoint(t *testing.T) {
	ctx := context.Background()
	s := newTestService(&fakeEncumbranceStore{})

	pool := &core.Pool{
		AssetID:       "btc",
		TotalDeposits: d("1000"),
		FeeIndex:      tally.Scale,
	}
	position := &core.Position{
		AccountKey: "bob",
		AssetID:    "btc",
		Principal:  d("500"),
		Debt:       d("500"),
	}

	require.Nil(t, s.Settle(ctx, pool, position, time.Unix(1700000000, 0)))

	assert.True(t, position.AccruedYield.IsZero())
	// a later base regain must not replay the old index advance
	assert.True(t, position.FeeIndexCheckpoint.Equal(pool.FeeIndex))
}

func TestSettleCollectsMaintenanceCharge(t *testing.T) {
	ctx := context.Background()
	s := newTestService(&fakeEncumbranceStore{})

	pool := &core.Pool{
		AssetID:          "btc",
		TotalDeposits:    d("1000"),
		TotalDebt:        d("100"),
		MaintenanceIndex: tally.Scale.Div(d("10")), // 0.1 per debt unit
	}
	position := &core.Position{
		AccountKey:   "carol",
		AssetID:      "btc",
		Principal:    d("1000"),
		Debt:         d("100"),
		AccruedYield: d("4"),
	}

	require.Nil(t, s.Settle(ctx, pool, position, time.Unix(1700000000, 0)))

	// charge 10: 4 from yield, 6 from principal; collected amount feeds the
	// fee index over the reduced deposit total
	assert.True(t, position.AccruedYield.IsZero())
	assert.True(t, position.Principal.Equal(d("994")))
	assert.True(t, pool.TotalDeposits.Equal(d("994")))
	assert.True(t, pool.FeeIndex.IsPositive())
	assert.True(t, position.MaintenanceIndexCheckpoint.Equal(pool.MaintenanceIndex))
}

func TestSettleMaintenanceSparesEncumberedPrincipal(t *testing.T) {
	ctx := context.Background()
	encumbrances := &fakeEncumbranceStore{}
	encumbrances.put(&core.Encumbrance{
		AccountKey:   "erin",
		AssetID:      "btc",
		DirectLocked: d("100"),
	})
	s := newTestService(encumbrances)

	pool := &core.Pool{
		AssetID:          "btc",
		TotalDeposits:    d("100"),
		TotalDebt:        d("100"),
		MaintenanceIndex: tally.Scale.Div(d("10")), // 0.1 per debt unit
	}
	position := &core.Position{
		AccountKey:   "erin",
		AssetID:      "btc",
		Principal:    d("100"),
		Debt:         d("100"),
		AccruedYield: d("2"),
	}

	require.Nil(t, s.Settle(ctx, pool, position, time.Unix(1700000000, 0)))

	// charge 10: 2 from yield, nothing from principal since the whole of it
	// is pledged; the shortfall stays uncollected
	assert.True(t, position.AccruedYield.IsZero())
	assert.True(t, position.Principal.Equal(d("100")))
	assert.True(t, pool.TotalDeposits.Equal(d("100")))
	assert.True(t, position.MaintenanceIndexCheckpoint.Equal(pool.MaintenanceIndex))
}

func TestSettleCreditActivatesThenClaims(t *testing.T) {
	ctx := context.Background()
	s := newTestService(&fakeEncumbranceStore{})

	start := time.Unix(1700000000, 0)
	pool := &core.Pool{AssetID: "btc", TotalDeposits: d("1000")}
	position := &core.Position{
		AccountKey:      "dave",
		AssetID:         "btc",
		Principal:       d("1000"),
		LenderPrincipal: d("200"),
		LenderStartedAt: start.Unix(),
	}

	// settle inside the window: nothing claimed, snapshot re-anchors
	pool.ActiveCreditIndex = tally.Scale
	require.Nil(t, s.Settle(ctx, pool, position, start.Add(time.Hour)))
	assert.True(t, position.AccruedYield.IsZero())
	assert.True(t, position.LenderSnapshot.Equal(pool.ActiveCreditIndex))

	// first settle past the gate activates without claiming
	require.Nil(t, s.Settle(ctx, pool, position, start.Add(25*time.Hour)))
	assert.True(t, position.AccruedYield.IsZero())

	// index advances once the record is active: the next settle claims it
	pool.ActiveCreditIndex = pool.ActiveCreditIndex.Add(tally.Scale)
	require.Nil(t, s.Settle(ctx, pool, position, start.Add(26*time.Hour)))
	assert.True(t, position.AccruedYield.Equal(d("200")))
}

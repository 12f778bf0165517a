package vault

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/core"
	"tally/pkg/guard"
)

func d(v string) decimal.Decimal {
	r, _ := decimal.NewFromString(v)
	return r
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
	record *core.Encumbrance
}

func (s *fakeEncumbranceStore) Find(ctx context.Context, accountKey, assetID string) (*core.Encumbrance, error) {
	if s.record != nil {
		return s.record, nil
	}

	return &core.Encumbrance{AccountKey: accountKey, AssetID: assetID}, nil
}

type fakeLedger struct {
	core.ILedgerService
}

func (fakeLedger) Settle(ctx context.Context, pool *core.Pool, position *core.Position, at time.Time) error {
	return nil
}

func newTestService(pool *core.Pool, position *core.Position, record *core.Encumbrance) *vaultService {
	return &vaultService{
		guard:        guard.New(),
		pools:        &fakePoolStore{pool: pool},
		positions:    &fakePositionStore{position: position},
		encumbrances: &fakeEncumbranceStore{record: record},
		ledger:       fakeLedger{},
	}
}

func TestIncreaseRejectsOverCommitment(t *testing.T) {
	ctx := context.Background()
	pool := &core.Pool{AssetID: "btc"}
	position := &core.Position{AccountKey: "alice", AssetID: "btc", Principal: d("100")}
	s := newTestService(pool, position, &core.Encumbrance{
		AccountKey:   "alice",
		AssetID:      "btc",
		DirectLocked: d("80"),
	})

	err := s.Increase(ctx, "alice", "btc", core.CategoryLocked, d("30"), "")
	assert.Equal(t, core.ErrInsufficientPrincipal, err)
}

func TestIncreaseRejectsWhileIndebted(t *testing.T) {
	ctx := context.Background()

	// 1000 deposited, 900 borrowed at 95% loan-to-value: pledging the whole
	// principal would leave the debt with no cover
	pool := &core.Pool{AssetID: "btc", LTVBps: 9500}
	position := &core.Position{
		AccountKey: "alice",
		AssetID:    "btc",
		Principal:  d("1000"),
		Debt:       d("900"),
	}
	s := newTestService(pool, position, nil)

	err := s.Increase(ctx, "alice", "btc", core.CategoryLocked, d("1000"), "")
	assert.Equal(t, core.ErrSolvencyViolation, err)

	// locking 53 leaves 947 available, and 947 at 95% only covers 899
	err = s.Increase(ctx, "alice", "btc", core.CategoryLocked, d("53"), "")
	assert.Equal(t, core.ErrSolvencyViolation, err)
}

func TestIncreaseRejectsReentry(t *testing.T) {
	ctx := context.Background()
	pool := &core.Pool{AssetID: "btc"}
	position := &core.Position{AccountKey: "alice", AssetID: "btc", Principal: d("100")}
	s := newTestService(pool, position, nil)

	require.NoError(t, s.guard.Enter(guardKey("alice", "btc")))
	defer s.guard.Exit(guardKey("alice", "btc"))

	err := s.Increase(ctx, "alice", "btc", core.CategoryLocked, d("10"), "")
	assert.Equal(t, core.ErrReentrantCall, err)
}

func TestDecreaseRejectsUnderflow(t *testing.T) {
	ctx := context.Background()
	pool := &core.Pool{AssetID: "btc"}
	position := &core.Position{AccountKey: "alice", AssetID: "btc", Principal: d("100")}
	s := newTestService(pool, position, &core.Encumbrance{
		AccountKey: "alice",
		AssetID:    "btc",
		DirectLent: d("10"),
	})

	err := s.Decrease(ctx, "alice", "btc", core.CategoryLent, d("20"), "")
	assert.Equal(t, core.ErrEncumbranceUnderflow, err)
}

package ledger

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"tally/core"
	"tally/internal/tally"
	"tally/pkg/guard"
)

type ledgerService struct {
	cfg          *core.Config
	db           *db.DB
	guard        *guard.Guard
	pools        core.IPoolStore
	positions    core.IPositionStore
	encumbrances core.IEncumbranceStore
	poolz        core.IPoolService
}

// New new ledger service
func New(
	cfg *core.Config,
	database *db.DB,
	g *guard.Guard,
	pools core.IPoolStore,
	positions core.IPositionStore,
	encumbrances core.IEncumbranceStore,
	poolz core.IPoolService,
) core.ILedgerService {
	return &ledgerService{
		cfg:          cfg,
		db:           database,
		guard:        g,
		pools:        pools,
		positions:    positions,
		encumbrances: encumbrances,
		poolz:        poolz,
	}
}

func guardKey(accountKey, assetID string) string {
	return accountKey + ":" + assetID
}

// Settle brings the position's checkpoints current against the pool indices.
// Fee yield lands in AccruedYield; the maintenance charge is collected from
// yield first and unencumbered principal second, then folded back into the
// fee index; each
// active-credit record claims its index advance only once its window elapsed
// before the previous settlement, so no record claims accrual from before its
// maturity. Checkpoints always advance, even at zero weight, to block
// stale-checkpoint replay. Mutates pool and position in memory only.
func (s *ledgerService) Settle(ctx context.Context, pool *core.Pool, position *core.Position, at time.Time) error {
	if err := s.poolz.AdvanceMaturity(ctx, pool, at); err != nil {
		return err
	}

	encumbrance, err := s.encumbrances.Find(ctx, position.AccountKey, pool.AssetID)
	if err != nil {
		return err
	}

	base := tally.FeeBase(pool.CrossDomain, position.Principal, position.Debt, encumbrance.DirectLocked, encumbrance.Total())
	yield := tally.IndexYield(base, pool.FeeIndex, position.FeeIndexCheckpoint)
	position.AccruedYield = position.AccruedYield.Add(yield)
	position.FeeIndexCheckpoint = pool.FeeIndex

	if err := s.collectMaintenance(ctx, pool, position, encumbrance.Total()); err != nil {
		return err
	}

	gate := s.cfg.TimeGate()
	now := at.Unix()

	lender, reward := settleCredit(pool, position.LenderState(), position.SettledAt, gate)
	position.SetLenderState(lender)

	borrower, borrowerReward := settleCredit(pool, position.BorrowerState(), position.SettledAt, gate)
	position.SetBorrowerState(borrower)

	position.AccruedYield = position.AccruedYield.Add(reward).Add(borrowerReward)
	position.SettledAt = now
	return nil
}

// settleCredit advances one credit record's snapshot and returns the reward it
// claims. A record matured before the previous settlement claims the index
// advance; a record still inside its window, or matured only since the last
// settlement, just re-anchors. The accrual between a bucket fold and the
// record's first settlement past it stays in the pool, never double-claimed.
func settleCredit(pool *core.Pool, state core.CreditState, settledAt, gate int64) (core.CreditState, decimal.Decimal) {
	reward := decimal.Zero
	if state.Principal.IsPositive() && tally.Matured(settledAt, state.StartedAt, gate) {
		reward = tally.IndexYield(state.Principal, pool.ActiveCreditIndex, state.IndexSnapshot)
	}

	state.IndexSnapshot = pool.ActiveCreditIndex
	return state, reward
}

func (s *ledgerService) collectMaintenance(ctx context.Context, pool *core.Pool, position *core.Position, encumbered decimal.Decimal) error {
	charge := tally.IndexCharge(position.Debt, pool.MaintenanceIndex, position.MaintenanceIndexCheckpoint)
	position.MaintenanceIndexCheckpoint = pool.MaintenanceIndex
	if !charge.IsPositive() {
		return nil
	}

	fromYield := decimal.Min(charge, position.AccruedYield)
	position.AccruedYield = position.AccruedYield.Sub(fromYield)

	// principal second, never past what encumbrances pin down
	fromPrincipal := decimal.Min(charge.Sub(fromYield), tally.AvailablePrincipal(position.Principal, encumbered))
	if fromPrincipal.IsPositive() {
		position.Principal = position.Principal.Sub(fromPrincipal)
		pool.TotalDeposits = pool.TotalDeposits.Sub(fromPrincipal)
	}

	collected := fromYield.Add(fromPrincipal)
	if collected.LessThan(charge) {
		logger.FromContext(ctx).WithFields(map[string]interface{}{
			"asset":   pool.AssetID,
			"account": position.AccountKey,
			"short":   charge.Sub(collected),
		}).Warningln("maintenance charge not fully collectable")
	}

	return s.poolz.AccrueFee(ctx, pool, collected, "maintenance")
}

func (s *ledgerService) Deposit(ctx context.Context, accountKey, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if err := s.guard.Enter(guardKey(accountKey, assetID)); err != nil {
		return core.ErrReentrantCall
	}
	defer s.guard.Exit(guardKey(accountKey, assetID))

	pool, err := s.pools.Find(ctx, assetID)
	if err != nil {
		return err
	}

	position, err := s.positions.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	at := time.Now()
	if err := s.Settle(ctx, pool, position, at); err != nil {
		return err
	}

	position.Principal = position.Principal.Add(amount)
	pool.TotalDeposits = pool.TotalDeposits.Add(amount)
	pool.TrackedBalance = pool.TrackedBalance.Add(amount)

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	})
}

func (s *ledgerService) Withdraw(ctx context.Context, accountKey, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if err := s.guard.Enter(guardKey(accountKey, assetID)); err != nil {
		return core.ErrReentrantCall
	}
	defer s.guard.Exit(guardKey(accountKey, assetID))

	pool, err := s.pools.Find(ctx, assetID)
	if err != nil {
		return err
	}

	position, err := s.positions.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	at := time.Now()
	if err := s.Settle(ctx, pool, position, at); err != nil {
		return err
	}

	encumbrance, err := s.encumbrances.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	available := tally.AvailablePrincipal(position.Principal, encumbrance.Total())
	if amount.GreaterThan(available) {
		return core.ErrInsufficientPrincipal
	}

	if !tally.Solvent(position.Debt, available.Sub(amount), pool.LTVBps) {
		return core.ErrSolvencyViolation
	}

	position.Principal = position.Principal.Sub(amount)
	pool.TotalDeposits = pool.TotalDeposits.Sub(amount)
	pool.TrackedBalance = pool.TrackedBalance.Sub(amount)

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	})
}

func (s *ledgerService) CompoundYield(ctx context.Context, accountKey, assetID string) (decimal.Decimal, error) {
	if err := s.guard.Enter(guardKey(accountKey, assetID)); err != nil {
		return decimal.Zero, core.ErrReentrantCall
	}
	defer s.guard.Exit(guardKey(accountKey, assetID))

	pool, err := s.pools.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	position, err := s.positions.Find(ctx, accountKey, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	at := time.Now()
	if err := s.Settle(ctx, pool, position, at); err != nil {
		return decimal.Zero, err
	}

	moved := position.AccruedYield
	if moved.IsPositive() {
		position.AccruedYield = decimal.Zero
		position.Principal = position.Principal.Add(moved)
		pool.TotalDeposits = pool.TotalDeposits.Add(moved)
	}

	if err := s.db.Tx(func(tx *db.DB) error {
		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	}); err != nil {
		return decimal.Zero, err
	}

	return moved, nil
}

func (s *ledgerService) Retire(ctx context.Context, accountKey, assetID string) error {
	if err := s.guard.Enter(guardKey(accountKey, assetID)); err != nil {
		return core.ErrReentrantCall
	}
	defer s.guard.Exit(guardKey(accountKey, assetID))

	pool, err := s.pools.Find(ctx, assetID)
	if err != nil {
		return err
	}

	position, err := s.positions.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	if position.ID == 0 {
		return core.ErrPositionNotFound
	}

	at := time.Now()
	if err := s.Settle(ctx, pool, position, at); err != nil {
		return err
	}

	encumbrance, err := s.encumbrances.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	drained := position.Principal.IsZero() &&
		position.Debt.IsZero() &&
		position.AccruedYield.IsZero() &&
		position.LenderPrincipal.IsZero() &&
		position.BorrowerPrincipal.IsZero() &&
		encumbrance.Total().IsZero()
	if !drained {
		return core.ErrRetireNotAllowed
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.encumbrances.Delete(ctx, tx, encumbrance); err != nil {
			return err
		}

		if err := s.positions.Delete(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	})
}

package credit

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"tally/core"
	"tally/internal/tally"
	"tally/pkg/guard"
)

type creditService struct {
	cfg          *core.Config
	db           *db.DB
	guard        *guard.Guard
	pools        core.IPoolStore
	positions    core.IPositionStore
	encumbrances core.IEncumbranceStore
	ledger       core.ILedgerService
}

// New new credit service
func New(
	cfg *core.Config,
	database *db.DB,
	g *guard.Guard,
	pools core.IPoolStore,
	positions core.IPositionStore,
	encumbrances core.IEncumbranceStore,
	ledger core.ILedgerService,
) core.ICreditService {
	return &creditService{
		cfg:          cfg,
		db:           database,
		guard:        g,
		pools:        pools,
		positions:    positions,
		encumbrances: encumbrances,
		ledger:       ledger,
	}
}

func guardKey(accountKey, assetID string) string {
	return accountKey + ":" + assetID
}

// joinCredit merges fresh principal into a credit record. Inherited maturity
// is diluted by the size ratio, the record re-enters the pending ring at its
// new maturity hour, and the pool totals move accordingly.
func joinCredit(pool *core.Pool, state core.CreditState, fresh decimal.Decimal, now, gate int64) core.CreditState {
	if state.Principal.IsPositive() {
		oldHour := tally.MaturityHour(state.StartedAt, gate)
		if oldHour < pool.PendingBuckets.StartHour {
			pool.ActiveCreditMaturedTotal = pool.ActiveCreditMaturedTotal.Sub(state.Principal)
		} else {
			pool.PendingBuckets.Remove(oldHour, state.Principal)
		}

		credit := tally.TimeCredit(now, state.StartedAt, gate)
		state.StartedAt = now - tally.DiluteTimeCredit(state.Principal, credit, fresh)
	} else {
		state.StartedAt = now
		state.IndexSnapshot = pool.ActiveCreditIndex
	}

	state.Principal = state.Principal.Add(fresh)
	pool.ActiveCreditPrincipalTotal = pool.ActiveCreditPrincipalTotal.Add(fresh)

	if !pool.PendingBuckets.Place(tally.MaturityHour(state.StartedAt, gate), state.Principal) {
		pool.ActiveCreditMaturedTotal = pool.ActiveCreditMaturedTotal.Add(state.Principal)
	}

	return state
}

// leaveCredit takes principal back out of a credit record, from the pending
// ring or the matured total depending on where its bucket stands. The start
// time is kept: shrinking a record never grants maturity.
func leaveCredit(pool *core.Pool, state core.CreditState, amount decimal.Decimal, gate int64) core.CreditState {
	hour := tally.MaturityHour(state.StartedAt, gate)
	if !pool.PendingBuckets.Remove(hour, amount) {
		pool.ActiveCreditMaturedTotal = pool.ActiveCreditMaturedTotal.Sub(amount)
	}

	pool.ActiveCreditPrincipalTotal = pool.ActiveCreditPrincipalTotal.Sub(amount)

	state.Principal = state.Principal.Sub(amount)
	if !state.Principal.IsPositive() {
		state = core.CreditState{IndexSnapshot: state.IndexSnapshot}
	}

	return state
}

func (s *creditService) Borrow(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) error {
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

	if err := s.ledger.Settle(ctx, pool, position, at); err != nil {
		return err
	}

	encumbrance, err := s.encumbrances.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	available := tally.AvailablePrincipal(position.Principal, encumbrance.Total())
	if !tally.Solvent(position.Debt.Add(amount), available, pool.LTVBps) {
		return core.ErrSolvencyViolation
	}

	if amount.GreaterThan(pool.TrackedBalance) {
		return core.ErrInsufficientPrincipal
	}

	position.Debt = position.Debt.Add(amount)
	pool.TotalDebt = pool.TotalDebt.Add(amount)
	pool.TrackedBalance = pool.TrackedBalance.Sub(amount)

	gate := s.cfg.TimeGate()
	position.SetBorrowerState(joinCredit(pool, position.BorrowerState(), amount, at.Unix(), gate))

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	})
}

func (s *creditService) Repay(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

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

	if err := s.ledger.Settle(ctx, pool, position, at); err != nil {
		return decimal.Zero, err
	}

	applied := decimal.Min(amount, position.Debt)
	if !applied.IsPositive() {
		return decimal.Zero, nil
	}

	position.Debt = position.Debt.Sub(applied)
	pool.TotalDebt = pool.TotalDebt.Sub(applied)
	pool.TrackedBalance = pool.TrackedBalance.Add(applied)

	gate := s.cfg.TimeGate()
	position.SetBorrowerState(leaveCredit(pool, position.BorrowerState(), applied, gate))

	if err := s.db.Tx(func(tx *db.DB) error {
		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	}); err != nil {
		return decimal.Zero, err
	}

	return applied, nil
}

func (s *creditService) OpenLend(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) error {
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

	if err := s.ledger.Settle(ctx, pool, position, at); err != nil {
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

	// deploying principal shrinks the debt cover like a withdrawal does
	if !tally.Solvent(position.Debt, available.Sub(amount), pool.LTVBps) {
		return core.ErrSolvencyViolation
	}

	encumbrance.DirectLent = encumbrance.DirectLent.Add(amount)

	gate := s.cfg.TimeGate()
	position.SetLenderState(joinCredit(pool, position.LenderState(), amount, at.Unix(), gate))

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
			return err
		}

		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	})
}

func (s *creditService) CloseLend(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) error {
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

	if err := s.ledger.Settle(ctx, pool, position, at); err != nil {
		return err
	}

	encumbrance, err := s.encumbrances.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	if encumbrance.DirectLent.LessThan(amount) {
		return core.ErrEncumbranceUnderflow
	}

	encumbrance.DirectLent = encumbrance.DirectLent.Sub(amount)

	gate := s.cfg.TimeGate()
	position.SetLenderState(leaveCredit(pool, position.LenderState(), amount, gate))

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
			return err
		}

		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		return s.pools.Update(ctx, tx, pool)
	})
}

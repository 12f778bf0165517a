package vault

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"tally/core"
	"tally/internal/tally"
	"tally/pkg/guard"
)

type vaultService struct {
	db           *db.DB
	guard        *guard.Guard
	pools        core.IPoolStore
	positions    core.IPositionStore
	encumbrances core.IEncumbranceStore
	ledger       core.ILedgerService
}

// New new vault service
func New(
	database *db.DB,
	g *guard.Guard,
	pools core.IPoolStore,
	positions core.IPositionStore,
	encumbrances core.IEncumbranceStore,
	ledger core.ILedgerService,
) core.IVaultService {
	return &vaultService{
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

// Increase books a new commitment. The bound checks live here rather than at
// every call site: a commitment past the principal, or one that would leave
// outstanding debt uncovered by the loan-to-value limit, is rejected whatever
// the caller believed. The position settles first so the fee base shifts on
// current checkpoints.
func (s *vaultService) Increase(ctx context.Context, accountKey, assetID string, category core.EncumbranceCategory, amount decimal.Decimal, indexID string) error {
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

	if err := s.ledger.Settle(ctx, pool, position, time.Now()); err != nil {
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

	encumbrance.SetCategory(category, encumbrance.Category(category).Add(amount))

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
			return err
		}

		if category == core.CategoryIndex {
			return s.bumpIndex(ctx, tx, accountKey, assetID, indexID, amount)
		}

		return nil
	})
}

// Decrease unwinds a commitment. Underflow means a caller settled something it
// never booked; that is a bug, not a user error.
func (s *vaultService) Decrease(ctx context.Context, accountKey, assetID string, category core.EncumbranceCategory, amount decimal.Decimal, indexID string) error {
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

	if err := s.ledger.Settle(ctx, pool, position, time.Now()); err != nil {
		return err
	}

	encumbrance, err := s.encumbrances.Find(ctx, accountKey, assetID)
	if err != nil {
		return err
	}

	held := encumbrance.Category(category)
	if held.LessThan(amount) {
		return core.ErrEncumbranceUnderflow
	}

	encumbrance.SetCategory(category, held.Sub(amount))

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
			return err
		}

		if category == core.CategoryIndex {
			return s.bumpIndex(ctx, tx, accountKey, assetID, indexID, amount.Neg())
		}

		return nil
	})
}

func (s *vaultService) Available(ctx context.Context, accountKey, assetID string) (decimal.Decimal, error) {
	position, err := s.positions.Find(ctx, accountKey, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	encumbrance, err := s.encumbrances.Find(ctx, accountKey, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return tally.AvailablePrincipal(position.Principal, encumbrance.Total()), nil
}

// bumpIndex keeps the per-index-instance breakout in step with the aggregate
// CategoryIndex amount.
func (s *vaultService) bumpIndex(ctx context.Context, tx *db.DB, accountKey, assetID, indexID string, delta decimal.Decimal) error {
	record, err := s.encumbrances.FindIndex(ctx, accountKey, assetID, indexID)
	if err != nil {
		return err
	}

	next := record.Amount.Add(delta)
	if next.IsNegative() {
		return core.ErrEncumbranceUnderflow
	}

	record.Amount = next
	return s.encumbrances.UpdateIndex(ctx, tx, record)
}

package agreement

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"tally/core"
	"tally/internal/tally"
	"tally/pkg/guard"
	"tally/pkg/id"
)

type agreementService struct {
	cfg          *core.Config
	db           *db.DB
	guard        *guard.Guard
	pools        core.IPoolStore
	positions    core.IPositionStore
	encumbrances core.IEncumbranceStore
	agreements   core.IAgreementStore
	ledger       core.ILedgerService
	poolz        core.IPoolService
}

// New new agreement service
func New(
	cfg *core.Config,
	database *db.DB,
	g *guard.Guard,
	pools core.IPoolStore,
	positions core.IPositionStore,
	encumbrances core.IEncumbranceStore,
	agreements core.IAgreementStore,
	ledger core.ILedgerService,
	poolz core.IPoolService,
) core.IAgreementService {
	return &agreementService{
		cfg:          cfg,
		db:           database,
		guard:        g,
		pools:        pools,
		positions:    positions,
		encumbrances: encumbrances,
		agreements:   agreements,
		ledger:       ledger,
		poolz:        poolz,
	}
}

// Open locks the borrower's collateral and records the agreement. Principal
// delivery between the parties is the caller facet's business; the engine only
// guarantees the collateral stays committed until the agreement closes.
func (s *agreementService) Open(ctx context.Context, params core.AgreementParams, at time.Time) (*core.Agreement, error) {
	if !params.Principal.IsPositive() || params.Collateral.IsNegative() {
		return nil, core.ErrInvalidAmount
	}
	if params.PenaltyBps < 0 || params.PenaltyBps > 10000 {
		return nil, core.ErrInvalidConfiguration
	}
	if params.DueAt <= at.Unix() {
		return nil, core.ErrInvalidConfiguration
	}

	if err := s.guard.Enter(params.Borrower + ":" + params.AssetID); err != nil {
		return nil, core.ErrReentrantCall
	}
	defer s.guard.Exit(params.Borrower + ":" + params.AssetID)

	pool, err := s.pools.Find(ctx, params.AssetID)
	if err != nil {
		return nil, err
	}

	position, err := s.positions.Find(ctx, params.Borrower, params.AssetID)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Settle(ctx, pool, position, at); err != nil {
		return nil, err
	}

	encumbrance, err := s.encumbrances.Find(ctx, params.Borrower, params.AssetID)
	if err != nil {
		return nil, err
	}

	available := tally.AvailablePrincipal(position.Principal, encumbrance.Total())
	if params.Collateral.GreaterThan(available) {
		return nil, core.ErrInsufficientPrincipal
	}

	// locking collateral shrinks the debt cover like a withdrawal does
	if !tally.Solvent(position.Debt, available.Sub(params.Collateral), pool.LTVBps) {
		return nil, core.ErrSolvencyViolation
	}

	encumbrance.DirectLocked = encumbrance.DirectLocked.Add(params.Collateral)

	agreement := &core.Agreement{
		TraceID:            params.TraceID,
		AssetID:            params.AssetID,
		Borrower:           params.Borrower,
		Lender:             params.Lender,
		PrincipalAtOpen:    params.Principal,
		PrincipalRemaining: params.Principal,
		Collateral:         params.Collateral,
		PenaltyBps:         params.PenaltyBps,
		DueAt:              params.DueAt,
		ExpireAt:           params.ExpireAt,
		GracePeriod:        params.GracePeriod,
		EarlyExercise:      params.EarlyExercise,
		Status:             core.AgreementStatusActive,
	}

	if err := s.db.Tx(func(tx *db.DB) error {
		if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
			return err
		}

		if err := s.positions.Update(ctx, tx, position); err != nil {
			return err
		}

		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		return s.agreements.Create(ctx, tx, agreement)
	}); err != nil {
		return nil, err
	}

	return agreement, nil
}

func (s *agreementService) Repay(ctx context.Context, caller, traceID string, amount decimal.Decimal, at time.Time) (*core.Agreement, error) {
	if !amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}

	agreement, err := s.agreements.Find(ctx, traceID)
	if err != nil {
		return nil, err
	}
	if agreement.Closed() {
		return nil, core.ErrAgreementClosed
	}
	if caller != agreement.Borrower {
		return nil, core.ErrOperationForbidden
	}

	if err := s.guard.Enter(agreement.Borrower + ":" + agreement.AssetID); err != nil {
		return nil, core.ErrReentrantCall
	}
	defer s.guard.Exit(agreement.Borrower + ":" + agreement.AssetID)

	applied := decimal.Min(amount, agreement.PrincipalRemaining)
	agreement.PrincipalRemaining = agreement.PrincipalRemaining.Sub(applied)

	var encumbrance *core.Encumbrance
	if agreement.PrincipalRemaining.IsZero() {
		agreement.Status = core.AgreementStatusRepaid

		encumbrance, err = s.encumbrances.Find(ctx, agreement.Borrower, agreement.AssetID)
		if err != nil {
			return nil, err
		}
		if encumbrance.DirectLocked.LessThan(agreement.Collateral) {
			return nil, core.ErrEncumbranceUnderflow
		}
		encumbrance.DirectLocked = encumbrance.DirectLocked.Sub(agreement.Collateral)
	}

	if err := s.db.Tx(func(tx *db.DB) error {
		if encumbrance != nil {
			if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
				return err
			}
		}

		return s.agreements.Update(ctx, tx, agreement)
	}); err != nil {
		return nil, err
	}

	return agreement, nil
}

// Exercise closes the agreement by delivering the collateral to the lender in
// place of the remaining principal.
func (s *agreementService) Exercise(ctx context.Context, caller, traceID string, at time.Time) (*core.Agreement, error) {
	agreement, err := s.agreements.Find(ctx, traceID)
	if err != nil {
		return nil, err
	}
	if agreement.Closed() {
		return nil, core.ErrAgreementClosed
	}
	if caller != agreement.Borrower {
		return nil, core.ErrOperationForbidden
	}

	now := at.Unix()
	if now < agreement.DueAt && !agreement.EarlyExercise {
		return nil, core.ErrExerciseWindow
	}
	if agreement.ExpireAt > 0 && now > agreement.ExpireAt {
		return nil, core.ErrExerciseWindow
	}

	if err := s.guard.Enter(agreement.Borrower + ":" + agreement.AssetID); err != nil {
		return nil, core.ErrReentrantCall
	}
	defer s.guard.Exit(agreement.Borrower + ":" + agreement.AssetID)

	pool, err := s.pools.Find(ctx, agreement.AssetID)
	if err != nil {
		return nil, err
	}

	borrower, err := s.positions.Find(ctx, agreement.Borrower, agreement.AssetID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Settle(ctx, pool, borrower, at); err != nil {
		return nil, err
	}

	// a self-dealing agreement must not load the position twice
	lender := borrower
	if agreement.Lender != agreement.Borrower {
		lender, err = s.positions.Find(ctx, agreement.Lender, agreement.AssetID)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.Settle(ctx, pool, lender, at); err != nil {
			return nil, err
		}
	}

	encumbrance, err := s.encumbrances.Find(ctx, agreement.Borrower, agreement.AssetID)
	if err != nil {
		return nil, err
	}
	if encumbrance.DirectLocked.LessThan(agreement.Collateral) {
		return nil, core.ErrEncumbranceUnderflow
	}

	encumbrance.DirectLocked = encumbrance.DirectLocked.Sub(agreement.Collateral)
	borrower.Principal = borrower.Principal.Sub(agreement.Collateral)
	lender.Principal = lender.Principal.Add(agreement.Collateral)

	agreement.PrincipalRemaining = decimal.Zero
	agreement.Status = core.AgreementStatusExercised

	if err := s.db.Tx(func(tx *db.DB) error {
		if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
			return err
		}

		if err := s.positions.Update(ctx, tx, borrower); err != nil {
			return err
		}

		if lender != borrower {
			if err := s.positions.Update(ctx, tx, lender); err != nil {
				return err
			}
		}

		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		return s.agreements.Update(ctx, tx, agreement)
	}); err != nil {
		return nil, err
	}

	return agreement, nil
}

// MarkDefault settles a missed agreement. Anyone may trigger it once the
// grace period elapsed; the caller is the enforcer and earns that share of
// the penalty. Collateral first covers the remaining principal, then the
// penalty, and whatever is left unlocks back to the borrower.
func (s *agreementService) MarkDefault(ctx context.Context, caller, traceID string, at time.Time) (*core.Agreement, error) {
	agreement, err := s.agreements.Find(ctx, traceID)
	if err != nil {
		return nil, err
	}
	if agreement.Closed() {
		return nil, core.ErrAgreementClosed
	}

	now := at.Unix()
	if now <= agreement.DueAt+agreement.GracePeriod {
		return nil, core.ErrGraceNotElapsed
	}

	if err := s.guard.Enter(agreement.Borrower + ":" + agreement.AssetID); err != nil {
		return nil, core.ErrReentrantCall
	}
	defer s.guard.Exit(agreement.Borrower + ":" + agreement.AssetID)

	pool, err := s.pools.Find(ctx, agreement.AssetID)
	if err != nil {
		return nil, err
	}

	borrower, err := s.positions.Find(ctx, agreement.Borrower, agreement.AssetID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Settle(ctx, pool, borrower, at); err != nil {
		return nil, err
	}

	lender := borrower
	if agreement.Lender != agreement.Borrower {
		lender, err = s.positions.Find(ctx, agreement.Lender, agreement.AssetID)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.Settle(ctx, pool, lender, at); err != nil {
			return nil, err
		}
	}

	encumbrance, err := s.encumbrances.Find(ctx, agreement.Borrower, agreement.AssetID)
	if err != nil {
		return nil, err
	}
	if encumbrance.DirectLocked.LessThan(agreement.Collateral) {
		return nil, core.ErrEncumbranceUnderflow
	}

	debtShare := decimal.Min(agreement.Collateral, agreement.PrincipalRemaining)
	remaining := agreement.Collateral.Sub(debtShare)
	penalty := tally.PenaltyAmount(agreement.PenaltyBps, agreement.PrincipalAtOpen, remaining, agreement.PrincipalRemaining)

	routing := s.cfg.Penalty.PenaltyRouting
	enforcerShare, treasuryShare, feeShare, creditShare := tally.SplitPenalty(penalty, routing)

	encumbrance.DirectLocked = encumbrance.DirectLocked.Sub(agreement.Collateral)
	borrower.Principal = borrower.Principal.Sub(debtShare).Sub(penalty)
	lender.Principal = lender.Principal.Add(debtShare)
	// the debt share moves between positions; enforcer and treasury shares
	// come back in below, so net only the index shares leave the total
	pool.TotalDeposits = pool.TotalDeposits.Sub(penalty)

	// an enforcer or treasury matching a party already loaded must reuse that
	// record, or the optimistic lock trips on the second write
	loaded := map[string]*core.Position{
		agreement.Borrower: borrower,
		agreement.Lender:   lender,
	}
	credit := func(key string, share decimal.Decimal) error {
		position, ok := loaded[key]
		if !ok {
			var err error
			position, err = s.positions.Find(ctx, key, agreement.AssetID)
			if err != nil {
				return err
			}
			if err := s.ledger.Settle(ctx, pool, position, at); err != nil {
				return err
			}
			loaded[key] = position
		}
		position.Principal = position.Principal.Add(share)
		pool.TotalDeposits = pool.TotalDeposits.Add(share)
		return nil
	}

	if enforcerShare.IsPositive() {
		if err := credit(caller, enforcerShare); err != nil {
			return nil, err
		}
	}
	if treasuryShare.IsPositive() {
		if s.cfg.Penalty.TreasuryAccount == "" {
			return nil, core.ErrInvalidConfiguration
		}
		if err := credit(s.cfg.Penalty.TreasuryAccount, treasuryShare); err != nil {
			return nil, err
		}
	}

	penaltyTrace := id.Modify(agreement.TraceID, "penalty")
	if err := s.poolz.AccrueFee(ctx, pool, feeShare, penaltyTrace); err != nil {
		return nil, err
	}
	if err := s.poolz.AccrueActiveCredit(ctx, pool, creditShare, penaltyTrace); err != nil {
		return nil, err
	}

	agreement.Status = core.AgreementStatusDefaulted

	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"trace":    agreement.TraceID,
		"asset":    agreement.AssetID,
		"penalty":  penalty,
		"enforcer": enforcerShare,
		"treasury": treasuryShare,
		"fee":      feeShare,
		"credit":   creditShare,
	}).Infoln("agreement defaulted")

	if err := s.db.Tx(func(tx *db.DB) error {
		if err := s.encumbrances.Update(ctx, tx, encumbrance); err != nil {
			return err
		}

		for _, position := range loaded {
			if err := s.positions.Update(ctx, tx, position); err != nil {
				return err
			}
		}

		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		return s.agreements.Update(ctx, tx, agreement)
	}); err != nil {
		return nil, err
	}

	return agreement, nil
}

package pool

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"

	"tally/core"
	"tally/internal/tally"
)

type poolService struct{}

// New new pool service
func New() core.IPoolService {
	return &poolService{}
}

// AccrueFee folds amount into the fee index over the current deposit total.
// Fees arriving while the pool is empty are dropped on purpose: nobody holds a
// claim on them.
func (s *poolService) AccrueFee(ctx context.Context, pool *core.Pool, amount decimal.Decimal, source string) error {
	log := logger.FromContext(ctx).WithField("accrue", "fee")

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	if pool.TotalDeposits.LessThanOrEqual(decimal.Zero) {
		log.WithFields(map[string]interface{}{
			"asset":  pool.AssetID,
			"amount": amount,
			"source": source,
		}).Infoln("fee dropped, pool has no deposits")
		return nil
	}

	delta, remainder := tally.DivCompensated(amount, pool.FeeIndexRemainder, pool.TotalDeposits)
	pool.FeeIndex = pool.FeeIndex.Add(delta)
	pool.FeeIndexRemainder = remainder

	return nil
}

// AccrueMaintenance spreads an upkeep charge over outstanding debt. The index
// records charge per debt unit; settlement collects each borrower's share.
func (s *poolService) AccrueMaintenance(ctx context.Context, pool *core.Pool, amount decimal.Decimal, at time.Time) error {
	pool.MaintenanceAccruedAt = at

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	if pool.TotalDebt.LessThanOrEqual(decimal.Zero) {
		logger.FromContext(ctx).WithFields(map[string]interface{}{
			"asset":  pool.AssetID,
			"amount": amount,
		}).Infoln("maintenance charge dropped, pool has no debt")
		return nil
	}

	delta, remainder := tally.DivCompensated(amount, pool.MaintenanceIndexRemainder, pool.TotalDebt)
	pool.MaintenanceIndex = pool.MaintenanceIndex.Add(delta)
	pool.MaintenanceIndexRemainder = remainder

	return nil
}

// AccrueActiveCredit distributes amount over matured active-credit principal
// only; pending principal earns nothing until its window elapses.
func (s *poolService) AccrueActiveCredit(ctx context.Context, pool *core.Pool, amount decimal.Decimal, source string) error {
	log := logger.FromContext(ctx).WithField("accrue", "active_credit")

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	if pool.ActiveCreditMaturedTotal.LessThanOrEqual(decimal.Zero) {
		log.WithFields(map[string]interface{}{
			"asset":  pool.AssetID,
			"amount": amount,
			"source": source,
		}).Infoln("reward dropped, no matured principal")
		return nil
	}

	delta, remainder := tally.DivCompensated(amount, pool.ActiveCreditRemainder, pool.ActiveCreditMaturedTotal)
	pool.ActiveCreditIndex = pool.ActiveCreditIndex.Add(delta)
	pool.ActiveCreditRemainder = remainder

	return nil
}

func (s *poolService) AdvanceMaturity(ctx context.Context, pool *core.Pool, at time.Time) error {
	matured := pool.PendingBuckets.AdvanceTo(tally.HourOf(at.Unix()))
	if matured.IsPositive() {
		pool.ActiveCreditMaturedTotal = pool.ActiveCreditMaturedTotal.Add(matured)
	}

	return nil
}

package maintenance

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"tally/core"
	"tally/internal/tally"
	"tally/worker"
)

const secondsPerYear = 365 * 24 * tally.SecondsPerHour

// Worker projects each pool's per-year maintenance rate against outstanding
// debt over elapsed time and feeds it into the maintenance index.
type Worker struct {
	worker.BaseJob
	Config      *core.Config
	DB          *db.DB
	PoolStore   core.IPoolStore
	PoolService core.IPoolService
}

// New new maintenance worker
func New(cfg *core.Config, database *db.DB, poolStore core.IPoolStore, poolSrv core.IPoolService) *Worker {
	job := Worker{
		Config:      cfg,
		DB:          database,
		PoolStore:   poolStore,
		PoolService: poolSrv,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 10m"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "maintenance")

	pools, err := w.PoolStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all pools error:", err)
		return err
	}

	now := time.Now()
	for _, pool := range pools {
		if pool.MaintenanceRateBps <= 0 || !pool.TotalDebt.IsPositive() {
			continue
		}

		charge := projectCharge(pool, now)
		if !charge.IsPositive() {
			continue
		}

		if err := w.PoolService.AccrueMaintenance(ctx, pool, charge, now); err != nil {
			log.WithField("asset", pool.AssetID).Errorln("accrue maintenance error:", err)
			return err
		}

		if err := w.DB.Tx(func(tx *db.DB) error {
			return w.PoolStore.Update(ctx, tx, pool)
		}); err != nil {
			log.WithField("asset", pool.AssetID).Errorln("update pool error:", err)
			return err
		}
	}

	return nil
}

// projectCharge is rate * debt * elapsed / year, rounded against borrowers.
func projectCharge(pool *core.Pool, now time.Time) decimal.Decimal {
	elapsed := now.Unix() - pool.MaintenanceAccruedAt.Unix()
	if elapsed <= 0 {
		return decimal.Zero
	}

	yearly := tally.BpsShare(pool.TotalDebt, pool.MaintenanceRateBps)
	q, r := yearly.Mul(decimal.NewFromInt(elapsed)).QuoRem(decimal.NewFromInt(secondsPerYear), 0)
	if r.IsPositive() {
		q = q.Add(decimal.New(1, 0))
	}

	return q
}

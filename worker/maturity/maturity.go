package maturity

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/robfig/cron/v3"

	"tally/core"
	"tally/internal/tally"
	"tally/worker"
)

const checkpointKey = "maturity_checkpoint_hour"

// Worker advances every pool's bucket cursor so matured active-credit
// principal joins the accrual denominator even when no user operation touches
// the pool.
type Worker struct {
	worker.BaseJob
	Config      *core.Config
	DB          *db.DB
	Property    property.Store
	PoolStore   core.IPoolStore
	PoolService core.IPoolService
}

// New new maturity worker
func New(cfg *core.Config, database *db.DB, propertyStore property.Store, poolStore core.IPoolStore, poolSrv core.IPoolService) *Worker {
	job := Worker{
		Config:      cfg,
		DB:          database,
		Property:    propertyStore,
		PoolStore:   poolStore,
		PoolService: poolSrv,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 1m"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "maturity")

	now := time.Now()
	hour := tally.HourOf(now.Unix())

	checkpoint, err := w.Property.Get(ctx, checkpointKey)
	if err != nil {
		log.Errorln("read checkpoint error:", err)
		return err
	}
	if checkpoint.Int64() >= hour {
		return nil
	}

	pools, err := w.PoolStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all pools error:", err)
		return err
	}

	for _, pool := range pools {
		if pool.PendingBuckets.StartHour > hour {
			continue
		}

		if err := w.PoolService.AdvanceMaturity(ctx, pool, now); err != nil {
			log.WithField("asset", pool.AssetID).Errorln("advance maturity error:", err)
			return err
		}

		if err := w.DB.Tx(func(tx *db.DB) error {
			return w.PoolStore.Update(ctx, tx, pool)
		}); err != nil {
			log.WithField("asset", pool.AssetID).Errorln("update pool error:", err)
			return err
		}
	}

	if err := w.Property.Save(ctx, checkpointKey, hour); err != nil {
		log.Errorln("save checkpoint error:", err)
		return err
	}

	return nil
}

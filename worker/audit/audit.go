package audit

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"

	"tally/core"
	"tally/worker"
)

// Worker re-checks the conservation invariants via SQL aggregation and logs
// violations. Read only, never mutates.
type Worker struct {
	worker.BaseJob
	Config     *core.Config
	PoolStore  core.IPoolStore
	AuditStore core.IAuditStore
}

// New new audit worker
func New(cfg *core.Config, poolStore core.IPoolStore, auditStore core.IAuditStore) *Worker {
	job := Worker{
		Config:     cfg,
		PoolStore:  poolStore,
		AuditStore: auditStore,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 30m"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "audit")

	pools, err := w.PoolStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all pools error:", err)
		return err
	}

	for _, pool := range pools {
		balances, err := w.AuditStore.PoolBalances(ctx, pool.AssetID)
		if err != nil {
			log.WithField("asset", pool.AssetID).Errorln("pool balances error:", err)
			continue
		}

		if !balances.Balanced() {
			log.WithFields(map[string]interface{}{
				"asset":          pool.AssetID,
				"total_deposits": balances.TotalDeposits,
				"principal_sum":  balances.PrincipalSum,
				"total_debt":     balances.TotalDebt,
				"debt_sum":       balances.DebtSum,
			}).Errorln("pool out of balance")
		}

		overruns, err := w.AuditStore.EncumbranceOverruns(ctx, pool.AssetID)
		if err != nil {
			log.WithField("asset", pool.AssetID).Errorln("encumbrance overruns error:", err)
			continue
		}

		for _, account := range overruns {
			log.WithFields(map[string]interface{}{
				"asset":   pool.AssetID,
				"account": account,
			}).Errorln("encumbrance exceeds principal")
		}
	}

	return nil
}

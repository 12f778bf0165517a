package pool

import (
	"context"
	"errors"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"

	"tally/core"
)

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.IPoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Pool{})
		if err := tx.AutoMigrate(core.Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *poolStore) Save(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	return tx.Update().Where("asset_id=?", pool.AssetID).FirstOrCreate(pool).Error
}

func (s *poolStore) Find(ctx context.Context, assetID string) (*core.Pool, error) {
	if assetID == "" {
		return nil, errors.New("invalid asset_id")
	}

	var pool core.Pool
	if err := s.db.View().Where("asset_id=?", assetID).First(&pool).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPoolUninitialized
		}
		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) FindBySymbol(ctx context.Context, symbol string) (*core.Pool, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}

	var pool core.Pool
	if err := s.db.View().Where("symbol=?", symbol).First(&pool).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPoolUninitialized
		}
		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) All(ctx context.Context) ([]*core.Pool, error) {
	var pools []*core.Pool
	if err := s.db.View().Find(&pools).Error; err != nil {
		return nil, err
	}

	return pools, nil
}

func (s *poolStore) AllAsMap(ctx context.Context) (map[string]*core.Pool, error) {
	pools, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	m := make(map[string]*core.Pool, len(pools))
	for _, p := range pools {
		m[p.AssetID] = p
	}

	return m, nil
}

// toUpdateParams updates by column map so zeroed totals, a drained index or a
// disabled risk parameter all reach the row.
func toUpdateParams(pool *core.Pool) map[string]interface{} {
	return map[string]interface{}{
		"total_deposits":                pool.TotalDeposits,
		"tracked_balance":               pool.TrackedBalance,
		"total_debt":                    pool.TotalDebt,
		"fee_index":                     pool.FeeIndex,
		"fee_index_remainder":           pool.FeeIndexRemainder,
		"maintenance_index":             pool.MaintenanceIndex,
		"maintenance_index_remainder":   pool.MaintenanceIndexRemainder,
		"maintenance_accrued_at":        pool.MaintenanceAccruedAt,
		"active_credit_index":           pool.ActiveCreditIndex,
		"active_credit_remainder":       pool.ActiveCreditRemainder,
		"active_credit_principal_total": pool.ActiveCreditPrincipalTotal,
		"active_credit_matured_total":   pool.ActiveCreditMaturedTotal,
		"pending_buckets":               pool.PendingBuckets,
		"ltv_bps":                       pool.LTVBps,
		"cross_domain":                  pool.CrossDomain,
		"maintenance_rate_bps":          pool.MaintenanceRateBps,
		"version":                       pool.Version,
	}
}

func (s *poolStore) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	version := pool.Version
	pool.Version++

	updated := tx.Update().Model(core.Pool{}).
		Where("asset_id=? and version=?", pool.AssetID, version).
		Updates(toUpdateParams(pool))
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

package position

import (
	"context"
	"errors"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"

	"tally/core"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) Save(ctx context.Context, tx *db.DB, position *core.Position) error {
	return tx.Update().
		Where("account_key=? and asset_id=?", position.AccountKey, position.AssetID).
		FirstOrCreate(position).Error
}

// Find returns the position of the account under asset. A fresh
// zero value record is returned when nothing exists yet so
// callers may settle and save without a presence check.
func (s *positionStore) Find(ctx context.Context, accountKey, assetID string) (*core.Position, error) {
	if accountKey == "" || assetID == "" {
		return nil, errors.New("invalid account_key or asset_id")
	}

	var position core.Position
	if err := s.db.View().Where("account_key=? and asset_id=?", accountKey, assetID).First(&position).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Position{
				AccountKey: accountKey,
				AssetID:    assetID,
			}, nil
		}
		return nil, err
	}

	return &position, nil
}

func (s *positionStore) FindByAccount(ctx context.Context, accountKey string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("account_key=?", accountKey).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) FindByAsset(ctx context.Context, assetID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("asset_id=?", assetID).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

// toUpdateParams updates by column map; a struct update would skip the zero
// values a full repay or unlend writes back.
func toUpdateParams(position *core.Position) map[string]interface{} {
	return map[string]interface{}{
		"principal":                    position.Principal,
		"debt":                         position.Debt,
		"accrued_yield":                position.AccruedYield,
		"fee_index_checkpoint":         position.FeeIndexCheckpoint,
		"maintenance_index_checkpoint": position.MaintenanceIndexCheckpoint,
		"lender_principal":             position.LenderPrincipal,
		"lender_started_at":            position.LenderStartedAt,
		"lender_snapshot":              position.LenderSnapshot,
		"borrower_principal":           position.BorrowerPrincipal,
		"borrower_started_at":          position.BorrowerStartedAt,
		"borrower_snapshot":            position.BorrowerSnapshot,
		"settled_at":                   position.SettledAt,
		"version":                      position.Version,
	}
}

func (s *positionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	if position.ID == 0 {
		return s.Save(ctx, tx, position)
	}

	version := position.Version
	position.Version++

	updated := tx.Update().Model(core.Position{}).
		Where("id=? and version=?", position.ID, version).
		Updates(toUpdateParams(position))
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *positionStore) Delete(ctx context.Context, tx *db.DB, position *core.Position) error {
	return tx.Update().Where("id=?", position.ID).Delete(core.Position{}).Error
}

package encumbrance

import (
	"context"
	"errors"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"

	"tally/core"
)

type encumbranceStore struct {
	db *db.DB
}

// New new encumbrance store
func New(db *db.DB) core.IEncumbranceStore {
	return &encumbranceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Encumbrance{})
		if err := tx.AutoMigrate(core.Encumbrance{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.IndexEncumbrance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *encumbranceStore) Save(ctx context.Context, tx *db.DB, e *core.Encumbrance) error {
	return tx.Update().
		Where("account_key=? and asset_id=?", e.AccountKey, e.AssetID).
		FirstOrCreate(e).Error
}

// Find returns the encumbrance record of the account under asset,
// a zero value record when nothing has been encumbered yet.
func (s *encumbranceStore) Find(ctx context.Context, accountKey, assetID string) (*core.Encumbrance, error) {
	if accountKey == "" || assetID == "" {
		return nil, errors.New("invalid account_key or asset_id")
	}

	var e core.Encumbrance
	if err := s.db.View().Where("account_key=? and asset_id=?", accountKey, assetID).First(&e).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Encumbrance{
				AccountKey: accountKey,
				AssetID:    assetID,
			}, nil
		}
		return nil, err
	}

	return &e, nil
}

// toUpdateParams updates by column map so a category released back to zero
// still reaches the row.
func toUpdateParams(e *core.Encumbrance) map[string]interface{} {
	return map[string]interface{}{
		"direct_locked":       e.DirectLocked,
		"direct_lent":         e.DirectLent,
		"direct_offer_escrow": e.DirectOfferEscrow,
		"index_encumbered":    e.IndexEncumbered,
		"version":             e.Version,
	}
}

func (s *encumbranceStore) Update(ctx context.Context, tx *db.DB, e *core.Encumbrance) error {
	if e.ID == 0 {
		return s.Save(ctx, tx, e)
	}

	version := e.Version
	e.Version++

	updated := tx.Update().Model(core.Encumbrance{}).
		Where("id=? and version=?", e.ID, version).
		Updates(toUpdateParams(e))
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *encumbranceStore) Delete(ctx context.Context, tx *db.DB, e *core.Encumbrance) error {
	if e.ID == 0 {
		return nil
	}

	return tx.Update().Where("id=?", e.ID).Delete(core.Encumbrance{}).Error
}

func (s *encumbranceStore) SaveIndex(ctx context.Context, tx *db.DB, e *core.IndexEncumbrance) error {
	return tx.Update().
		Where("account_key=? and asset_id=? and index_id=?", e.AccountKey, e.AssetID, e.IndexID).
		FirstOrCreate(e).Error
}

func (s *encumbranceStore) FindIndex(ctx context.Context, accountKey, assetID, indexID string) (*core.IndexEncumbrance, error) {
	var e core.IndexEncumbrance
	if err := s.db.View().Where("account_key=? and asset_id=? and index_id=?", accountKey, assetID, indexID).First(&e).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.IndexEncumbrance{
				AccountKey: accountKey,
				AssetID:    assetID,
				IndexID:    indexID,
			}, nil
		}
		return nil, err
	}

	return &e, nil
}

func (s *encumbranceStore) ListIndexes(ctx context.Context, accountKey, assetID string) ([]*core.IndexEncumbrance, error) {
	var es []*core.IndexEncumbrance
	if err := s.db.View().Where("account_key=? and asset_id=?", accountKey, assetID).Find(&es).Error; err != nil {
		return nil, err
	}

	return es, nil
}

func (s *encumbranceStore) UpdateIndex(ctx context.Context, tx *db.DB, e *core.IndexEncumbrance) error {
	if e.ID == 0 {
		return s.SaveIndex(ctx, tx, e)
	}

	version := e.Version
	e.Version++

	updated := tx.Update().Model(core.IndexEncumbrance{}).
		Where("id=? and version=?", e.ID, version).
		Updates(map[string]interface{}{
			"amount":  e.Amount,
			"version": e.Version,
		})
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

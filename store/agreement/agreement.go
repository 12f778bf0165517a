package agreement

import (
	"context"
	"errors"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"

	"tally/core"
)

type agreementStore struct {
	db *db.DB
}

// New new agreement store
func New(db *db.DB) core.IAgreementStore {
	return &agreementStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Agreement{})
		if err := tx.AutoMigrate(core.Agreement{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *agreementStore) Create(ctx context.Context, tx *db.DB, agreement *core.Agreement) error {
	return tx.Update().
		Where("trace_id=?", agreement.TraceID).
		FirstOrCreate(agreement).Error
}

func (s *agreementStore) Find(ctx context.Context, traceID string) (*core.Agreement, error) {
	if traceID == "" {
		return nil, errors.New("invalid trace_id")
	}

	var agreement core.Agreement
	if err := s.db.View().Where("trace_id=?", traceID).First(&agreement).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrAgreementNotFound
		}
		return nil, err
	}

	return &agreement, nil
}

func (s *agreementStore) FindByBorrower(ctx context.Context, borrower string) ([]*core.Agreement, error) {
	var agreements []*core.Agreement
	if err := s.db.View().Where("borrower=?", borrower).Find(&agreements).Error; err != nil {
		return nil, err
	}

	return agreements, nil
}

func (s *agreementStore) ListByStatus(ctx context.Context, status core.AgreementStatus) ([]*core.Agreement, error) {
	var agreements []*core.Agreement
	if err := s.db.View().Where("status=?", status).Find(&agreements).Error; err != nil {
		return nil, err
	}

	return agreements, nil
}

func (s *agreementStore) Update(ctx context.Context, tx *db.DB, agreement *core.Agreement) error {
	version := agreement.Version
	agreement.Version++

	// column map so an exercise that zeroes the remaining principal still
	// reaches the row
	updated := tx.Update().Model(core.Agreement{}).
		Where("id=? and version=?", agreement.ID, version).
		Updates(map[string]interface{}{
			"principal_remaining": agreement.PrincipalRemaining,
			"status":              agreement.Status,
			"version":             agreement.Version,
		})
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

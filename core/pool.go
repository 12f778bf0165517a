package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"tally/internal/tally"
)

// Pool is an isolated ledger for one asset.
type Pool struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol  string `sql:"size:20;unique_index:symbol_idx" json:"symbol"`
	// 总存款, sum of all position principals
	TotalDeposits decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"total_deposits"`
	// asset units the pool custodies
	TrackedBalance decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"tracked_balance"`
	// outstanding same-asset debt across all positions
	TotalDebt decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"total_debt"`
	// 1e18-scaled monotonic accumulators and their division leftovers
	FeeIndex                  decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"fee_index"`
	FeeIndexRemainder         decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"fee_index_remainder"`
	MaintenanceIndex          decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"maintenance_index"`
	MaintenanceIndexRemainder decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"maintenance_index_remainder"`
	MaintenanceAccruedAt      time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"maintenance_accrued_at"`
	ActiveCreditIndex         decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"active_credit_index"`
	ActiveCreditRemainder     decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"active_credit_remainder"`
	// pending + matured active-credit principal, and the matured part used as
	// the accrual denominator
	ActiveCreditPrincipalTotal decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"active_credit_principal_total"`
	ActiveCreditMaturedTotal   decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"active_credit_matured_total"`
	// hourly maturity buckets with their rolling cursor
	PendingBuckets tally.BucketRing `sql:"type:varchar(2048)" json:"pending_buckets"`
	// loan-to-value in bps; zero disables borrowing entirely
	LTVBps int64 `sql:"default:0" json:"ltv_bps"`
	// cross-domain pools keep locked collateral in the fee base
	CrossDomain bool `sql:"default:false" json:"cross_domain"`
	// per-year upkeep rate in bps charged against outstanding debt
	MaintenanceRateBps int64     `sql:"default:0" json:"maintenance_rate_bps"`
	Version            int64     `sql:"default:0" json:"version"`
	CreatedAt          time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPoolStore pool store interface
type IPoolStore interface {
	Save(ctx context.Context, tx *db.DB, pool *Pool) error
	Find(ctx context.Context, assetID string) (*Pool, error)
	FindBySymbol(ctx context.Context, symbol string) (*Pool, error)
	All(ctx context.Context) ([]*Pool, error)
	AllAsMap(ctx context.Context) (map[string]*Pool, error)
	Update(ctx context.Context, tx *db.DB, pool *Pool) error
}

// IPoolService mutates pool indices in memory; callers persist inside their
// own transaction.
type IPoolService interface {
	// AccrueFee distributes amount over the current total deposits. Dropped
	// when the pool holds no deposits.
	AccrueFee(ctx context.Context, pool *Pool, amount decimal.Decimal, source string) error
	// AccrueMaintenance spreads an upkeep charge over outstanding debt and
	// stamps the accrual time. Borrowers pay their share at settlement.
	AccrueMaintenance(ctx context.Context, pool *Pool, amount decimal.Decimal, at time.Time) error
	// AccrueActiveCredit distributes amount over matured active-credit
	// principal. Dropped when nothing has matured.
	AccrueActiveCredit(ctx context.Context, pool *Pool, amount decimal.Decimal, source string) error
	// AdvanceMaturity folds matured buckets into the accrual denominator.
	AdvanceMaturity(ctx context.Context, pool *Pool, at time.Time) error
}

package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// CreditState is one side of a position's active-credit participation.
type CreditState struct {
	Principal     decimal.Decimal
	StartedAt     int64
	IndexSnapshot decimal.Decimal
}

// Position is the per (account, pool) ledger record. The account key is an
// opaque hash derived from the ownership registry; the same key recurs across
// every pool the owner touches.
type Position struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AccountKey string          `sql:"size:64;unique_index:position_idx" json:"account_key"`
	AssetID    string          `sql:"size:36;unique_index:position_idx" json:"asset_id"`
	Principal  decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"principal"`
	Debt       decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"debt"`
	// settled, withdrawable yield
	AccruedYield               decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"accrued_yield"`
	FeeIndexCheckpoint         decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"fee_index_checkpoint"`
	MaintenanceIndexCheckpoint decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"maintenance_index_checkpoint"`
	// lender-side active credit
	LenderPrincipal decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"lender_principal"`
	LenderStartedAt int64           `sql:"default:0" json:"lender_started_at"`
	LenderSnapshot  decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"lender_snapshot"`
	// borrower-side active credit
	BorrowerPrincipal decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"borrower_principal"`
	BorrowerStartedAt int64           `sql:"default:0" json:"borrower_started_at"`
	BorrowerSnapshot  decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"borrower_snapshot"`
	// unix time of the last settlement; a credit record whose window elapsed
	// before this stamp claims index advances, a younger one re-anchors first
	SettledAt int64     `sql:"default:0" json:"settled_at"`
	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// LenderState returns the lender-side credit state.
func (p *Position) LenderState() CreditState {
	return CreditState{
		Principal:     p.LenderPrincipal,
		StartedAt:     p.LenderStartedAt,
		IndexSnapshot: p.LenderSnapshot,
	}
}

// SetLenderState writes back the lender-side credit state.
func (p *Position) SetLenderState(s CreditState) {
	p.LenderPrincipal = s.Principal
	p.LenderStartedAt = s.StartedAt
	p.LenderSnapshot = s.IndexSnapshot
}

// BorrowerState returns the borrower-side credit state.
func (p *Position) BorrowerState() CreditState {
	return CreditState{
		Principal:     p.BorrowerPrincipal,
		StartedAt:     p.BorrowerStartedAt,
		IndexSnapshot: p.BorrowerSnapshot,
	}
}

// SetBorrowerState writes back the borrower-side credit state.
func (p *Position) SetBorrowerState(s CreditState) {
	p.BorrowerPrincipal = s.Principal
	p.BorrowerStartedAt = s.StartedAt
	p.BorrowerSnapshot = s.IndexSnapshot
}

// IPositionStore position store interface. Find returns a zero-ID record when
// the account has not joined the pool yet.
type IPositionStore interface {
	Save(ctx context.Context, tx *db.DB, position *Position) error
	Find(ctx context.Context, accountKey, assetID string) (*Position, error)
	FindByAccount(ctx context.Context, accountKey string) ([]*Position, error)
	FindByAsset(ctx context.Context, assetID string) ([]*Position, error)
	Update(ctx context.Context, tx *db.DB, position *Position) error
	Delete(ctx context.Context, tx *db.DB, position *Position) error
}

// ILedgerService principal in and out, lazy settlement, retirement.
type ILedgerService interface {
	Deposit(ctx context.Context, accountKey, assetID string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, accountKey, assetID string, amount decimal.Decimal) error
	// CompoundYield rolls settled yield into principal and returns the amount moved.
	CompoundYield(ctx context.Context, accountKey, assetID string) (decimal.Decimal, error)
	// Retire drops a fully drained position; rejoining later re-checkpoints at
	// the then-current indices.
	Retire(ctx context.Context, accountKey, assetID string) error
	// Settle brings the position's checkpoints current. Every service must call
	// it before reading or changing a position's weights; it mutates pool and
	// position in memory only.
	Settle(ctx context.Context, pool *Pool, position *Position, at time.Time) error
}

// ICreditService same-asset debt and lender-side deployments.
type ICreditService interface {
	Borrow(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) error
	// Repay returns the amount actually applied to the debt.
	Repay(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) (decimal.Decimal, error)
	// OpenLend deploys available principal as lending reserves; CloseLend
	// unwinds it.
	OpenLend(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) error
	CloseLend(ctx context.Context, accountKey, assetID string, amount decimal.Decimal, at time.Time) error
}

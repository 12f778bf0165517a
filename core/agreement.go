package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// AgreementStatus credit agreement state machine
type AgreementStatus int

const (
	// AgreementStatusActive open
	AgreementStatusActive AgreementStatus = iota
	// AgreementStatusRepaid closed by full repayment
	AgreementStatusRepaid
	// AgreementStatusExercised closed by exercise
	AgreementStatusExercised
	// AgreementStatusDefaulted closed by penalty settlement
	AgreementStatusDefaulted
)

func (s AgreementStatus) String() string {
	switch s {
	case AgreementStatusActive:
		return "active"
	case AgreementStatusRepaid:
		return "repaid"
	case AgreementStatusExercised:
		return "exercised"
	case AgreementStatusDefaulted:
		return "defaulted"
	default:
		return "unknown"
	}
}

// Agreement is one credit agreement settled through the engine. Collateral and
// debt share the pool asset; cross-asset terms fix their ratio at creation and
// land here already converted.
type Agreement struct {
	ID       uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID  string `sql:"size:36;unique_index:agreement_trace_idx" json:"trace_id"`
	AssetID  string `sql:"size:36;index:agreement_asset_idx" json:"asset_id"`
	Borrower string `sql:"size:64;index:agreement_borrower_idx" json:"borrower"`
	Lender   string `sql:"size:64" json:"lender"`
	// fixed basis for the penalty, untouched by repayments
	PrincipalAtOpen    decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"principal_at_open"`
	PrincipalRemaining decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"principal_remaining"`
	Collateral         decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"collateral"`
	PenaltyBps         int64           `sql:"default:0" json:"penalty_bps"`
	DueAt              int64           `sql:"default:0" json:"due_at"`
	ExpireAt           int64           `sql:"default:0" json:"expire_at"`
	GracePeriod        int64           `sql:"default:0" json:"grace_period"`
	// permits exercise before the due timestamp
	EarlyExercise bool            `sql:"default:false" json:"early_exercise"`
	Status        AgreementStatus `sql:"default:0" json:"status"`
	Version       int64           `sql:"default:0" json:"version"`
	CreatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Closed reports whether the agreement left the active state.
func (a *Agreement) Closed() bool {
	return a.Status != AgreementStatusActive
}

// IAgreementStore agreement store interface
type IAgreementStore interface {
	Create(ctx context.Context, tx *db.DB, agreement *Agreement) error
	Find(ctx context.Context, traceID string) (*Agreement, error)
	FindByBorrower(ctx context.Context, borrower string) ([]*Agreement, error)
	ListByStatus(ctx context.Context, status AgreementStatus) ([]*Agreement, error)
	Update(ctx context.Context, tx *db.DB, agreement *Agreement) error
}

// AgreementParams everything needed to open an agreement; callers have already
// validated the product-level terms.
type AgreementParams struct {
	TraceID       string
	AssetID       string
	Borrower      string
	Lender        string
	Principal     decimal.Decimal
	Collateral    decimal.Decimal
	PenaltyBps    int64
	DueAt         int64
	ExpireAt      int64
	GracePeriod   int64
	EarlyExercise bool
}

// IAgreementService drives the agreement state machine on top of the ledger
// primitives.
type IAgreementService interface {
	Open(ctx context.Context, params AgreementParams, at time.Time) (*Agreement, error)
	// Repay applies amount to the remaining principal; borrower only.
	Repay(ctx context.Context, caller, traceID string, amount decimal.Decimal, at time.Time) (*Agreement, error)
	// Exercise closes the agreement by handing the collateral to the lender;
	// borrower only, inside the allowed window.
	Exercise(ctx context.Context, caller, traceID string, at time.Time) (*Agreement, error)
	// MarkDefault settles a missed agreement: anyone may call once the grace
	// period elapsed; the caller becomes the enforcer for the penalty split.
	MarkDefault(ctx context.Context, caller, traceID string, at time.Time) (*Agreement, error)
}

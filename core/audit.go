package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// PoolAudit is a consistency snapshot of one pool: the stored totals next to
// the aggregates recomputed from positions.
type PoolAudit struct {
	AssetID       string          `json:"asset_id"`
	TotalDeposits decimal.Decimal `json:"total_deposits"`
	PrincipalSum  decimal.Decimal `json:"principal_sum"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	DebtSum       decimal.Decimal `json:"debt_sum"`
}

// Balanced reports whether the stored totals match the recomputed sums.
func (a *PoolAudit) Balanced() bool {
	return a.TotalDeposits.Equal(a.PrincipalSum) && a.TotalDebt.Equal(a.DebtSum)
}

// IAuditStore aggregation queries used by the audit sweep; read only.
type IAuditStore interface {
	PoolBalances(ctx context.Context, assetID string) (*PoolAudit, error)
	// EncumbranceOverruns lists accounts whose total encumbrance exceeds their
	// principal; empty in a correctly operating system.
	EncumbranceOverruns(ctx context.Context, assetID string) ([]string, error)
}

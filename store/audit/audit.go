package audit

import (
	"context"
	"database/sql"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"tally/core"
)

type auditStore struct {
	db *sqlx.DB
}

// New wraps the shared connection with sqlx for the aggregation queries the
// audit sweep runs. Read only.
func New(d *db.DB, dialect string) core.IAuditStore {
	return &auditStore{db: sqlx.NewDb(d.View().DB(), dialect)}
}

func (s *auditStore) PoolBalances(ctx context.Context, assetID string) (*core.PoolAudit, error) {
	var pool struct {
		TotalDeposits decimal.Decimal `db:"total_deposits"`
		TotalDebt     decimal.Decimal `db:"total_debt"`
	}
	if err := s.db.GetContext(ctx, &pool,
		"SELECT total_deposits, total_debt FROM pools WHERE asset_id = ?", assetID); err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrPoolUninitialized
		}
		return nil, err
	}

	var sums struct {
		PrincipalSum decimal.NullDecimal `db:"principal_sum"`
		DebtSum      decimal.NullDecimal `db:"debt_sum"`
	}
	if err := s.db.GetContext(ctx, &sums,
		"SELECT SUM(principal) AS principal_sum, SUM(debt) AS debt_sum FROM positions WHERE asset_id = ?", assetID); err != nil {
		return nil, err
	}

	return &core.PoolAudit{
		AssetID:       assetID,
		TotalDeposits: pool.TotalDeposits,
		PrincipalSum:  sums.PrincipalSum.Decimal,
		TotalDebt:     pool.TotalDebt,
		DebtSum:       sums.DebtSum.Decimal,
	}, nil
}

func (s *auditStore) EncumbranceOverruns(ctx context.Context, assetID string) ([]string, error) {
	var accounts []string
	err := s.db.SelectContext(ctx, &accounts, `
		SELECT e.account_key
		FROM encumbrances e
		LEFT JOIN positions p ON p.account_key = e.account_key AND p.asset_id = e.asset_id
		WHERE e.asset_id = ?
		  AND e.direct_locked + e.direct_lent + e.direct_offer_escrow + e.index_encumbered > COALESCE(p.principal, 0)`,
		assetID)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

package position

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tally/core"
)

func TestUpdateParamsKeepZeroedCredit(t *testing.T) {
	position := &core.Position{
		ID:                1,
		AccountKey:        "alice",
		AssetID:           "btc",
		BorrowerPrincipal: decimal.NewFromInt(100),
		BorrowerStartedAt: 1700000000,
		Version:           3,
	}

	// full repay resets the borrower side to its zero value; the write must
	// still carry those columns or the row keeps the phantom principal
	position.SetBorrowerState(core.CreditState{})

	params := toUpdateParams(position)
	assert.True(t, params["borrower_principal"].(decimal.Decimal).IsZero())
	assert.Equal(t, int64(0), params["borrower_started_at"])
}

func TestUpdateParamsCoverLedgerColumns(t *testing.T) {
	params := toUpdateParams(&core.Position{})

	for _, column := range []string{
		"principal", "debt", "accrued_yield",
		"fee_index_checkpoint", "maintenance_index_checkpoint",
		"lender_principal", "lender_started_at", "lender_snapshot",
		"borrower_principal", "borrower_started_at", "borrower_snapshot",
		"settled_at", "version",
	} {
		_, ok := params[column]
		assert.True(t, ok, column)
	}
}

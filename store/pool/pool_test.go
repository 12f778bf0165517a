package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tally/core"
)

func TestUpdateParamsCoverRiskColumns(t *testing.T) {
	// risk parameters can legitimately be set back to zero, so the write has
	// to carry them explicitly
	params := toUpdateParams(&core.Pool{})

	for _, column := range []string{
		"total_deposits", "tracked_balance", "total_debt",
		"fee_index", "fee_index_remainder",
		"maintenance_index", "maintenance_index_remainder",
		"active_credit_index", "active_credit_remainder",
		"active_credit_principal_total", "active_credit_matured_total",
		"pending_buckets",
		"ltv_bps", "cross_domain", "maintenance_rate_bps",
		"version",
	} {
		_, ok := params[column]
		assert.True(t, ok, column)
	}

	assert.Equal(t, int64(0), params["ltv_bps"])
	assert.Equal(t, false, params["cross_domain"])
}

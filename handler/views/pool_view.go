package views

import (
	"github.com/shopspring/decimal"

	"tally/core"
)

// Pool pool view
type Pool struct {
	core.Pool
	PendingTotal decimal.Decimal `json:"pending_total"`
}

package views

import (
	"github.com/shopspring/decimal"

	"tally/core"
)

// Position position view
type Position struct {
	core.Position
	Available  decimal.Decimal `json:"available"`
	Encumbered decimal.Decimal `json:"encumbered"`
}

// Agreement agreement view
type Agreement struct {
	core.Agreement
	StatusName string `json:"status_name"`
}

package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// EncumbranceCategory names one of the four tracked commitments.
type EncumbranceCategory int

const (
	// CategoryLocked collateral pledged to options, futures, curves or
	// bilateral agreements
	CategoryLocked EncumbranceCategory = iota
	// CategoryLent principal actively deployed as lending reserves
	CategoryLent
	// CategoryOfferEscrow principal reserved behind open, unfilled offers
	CategoryOfferEscrow
	// CategoryIndex principal backing basket-index tokens
	CategoryIndex
)

func (c EncumbranceCategory) String() string {
	switch c {
	case CategoryLocked:
		return "locked"
	case CategoryLent:
		return "lent"
	case CategoryOfferEscrow:
		return "offer_escrow"
	case CategoryIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Encumbrance tracks capital committed to external obligations without moving
// it out of the pool.
type Encumbrance struct {
	ID                uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AccountKey        string `sql:"size:64;unique_index:encumbrance_idx" json:"account_key"`
	AssetID           string `sql:"size:36;unique_index:encumbrance_idx" json:"asset_id"`
	DirectLocked      decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"direct_locked"`
	DirectLent        decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"direct_lent"`
	DirectOfferEscrow decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"direct_offer_escrow"`
	IndexEncumbered   decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"index_encumbered"`
	Version           int64           `sql:"default:0" json:"version"`
	CreatedAt         time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Total aggregates the four categories.
func (e *Encumbrance) Total() decimal.Decimal {
	return e.DirectLocked.Add(e.DirectLent).Add(e.DirectOfferEscrow).Add(e.IndexEncumbered)
}

// Category reads one tracked amount.
func (e *Encumbrance) Category(c EncumbranceCategory) decimal.Decimal {
	switch c {
	case CategoryLocked:
		return e.DirectLocked
	case CategoryLent:
		return e.DirectLent
	case CategoryOfferEscrow:
		return e.DirectOfferEscrow
	case CategoryIndex:
		return e.IndexEncumbered
	default:
		return decimal.Zero
	}
}

// SetCategory writes one tracked amount.
func (e *Encumbrance) SetCategory(c EncumbranceCategory, v decimal.Decimal) {
	switch c {
	case CategoryLocked:
		e.DirectLocked = v
	case CategoryLent:
		e.DirectLent = v
	case CategoryOfferEscrow:
		e.DirectOfferEscrow = v
	case CategoryIndex:
		e.IndexEncumbered = v
	}
}

// IndexEncumbrance is the per-index-instance breakout of CategoryIndex kept
// for audit.
type IndexEncumbrance struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AccountKey string          `sql:"size:64;unique_index:index_encumbrance_idx" json:"account_key"`
	AssetID    string          `sql:"size:36;unique_index:index_encumbrance_idx" json:"asset_id"`
	IndexID    string          `sql:"size:36;unique_index:index_encumbrance_idx" json:"index_id"`
	Amount     decimal.Decimal `sql:"type:decimal(65,0);default:0" json:"amount"`
	Version    int64           `sql:"default:0" json:"version"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IEncumbranceStore encumbrance store interface. Find returns zero-ID records
// for untouched accounts.
type IEncumbranceStore interface {
	Save(ctx context.Context, tx *db.DB, encumbrance *Encumbrance) error
	Find(ctx context.Context, accountKey, assetID string) (*Encumbrance, error)
	Update(ctx context.Context, tx *db.DB, encumbrance *Encumbrance) error
	Delete(ctx context.Context, tx *db.DB, encumbrance *Encumbrance) error
	SaveIndex(ctx context.Context, tx *db.DB, record *IndexEncumbrance) error
	FindIndex(ctx context.Context, accountKey, assetID, indexID string) (*IndexEncumbrance, error)
	ListIndexes(ctx context.Context, accountKey, assetID string) ([]*IndexEncumbrance, error)
	UpdateIndex(ctx context.Context, tx *db.DB, record *IndexEncumbrance) error
}

// IVaultService the encumbrance registry. Increase rejects anything that
// would push the account's total commitment past its principal or leave its
// debt uncovered by the pool loan-to-value limit; Decrease rejects underflow
// as a caller bug.
type IVaultService interface {
	Increase(ctx context.Context, accountKey, assetID string, category EncumbranceCategory, amount decimal.Decimal, indexID string) error
	Decrease(ctx context.Context, accountKey, assetID string, category EncumbranceCategory, amount decimal.Decimal, indexID string) error
	// Available is principal minus total encumbrance, floored at zero.
	Available(ctx context.Context, accountKey, assetID string) (decimal.Decimal, error)
}

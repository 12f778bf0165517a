package ops

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
)

type vaultParams struct {
	Account  string          `json:"account"`
	Token    string          `json:"token"`
	Asset    string          `json:"asset"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	IndexID  string          `json:"index_id"`
}

func parseCategory(name string) (core.EncumbranceCategory, error) {
	switch name {
	case "locked":
		return core.CategoryLocked, nil
	case "lent":
		return core.CategoryLent, nil
	case "offer_escrow":
		return core.CategoryOfferEscrow, nil
	case "index":
		return core.CategoryIndex, nil
	default:
		return 0, errors.New("unknown category")
	}
}

func encumberHandler(cfg *core.Config, vault core.IVaultService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params vaultParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		category, err := parseCategory(params.Category)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := vault.Increase(r.Context(), account, params.Asset, category, params.Amount, params.IndexID); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

func releaseHandler(cfg *core.Config, vault core.IVaultService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params vaultParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		category, err := parseCategory(params.Category)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := vault.Decrease(r.Context(), account, params.Asset, category, params.Amount, params.IndexID); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

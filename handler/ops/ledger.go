package ops

import (
	"net/http"

	"github.com/shopspring/decimal"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
)

type ledgerParams struct {
	Account string          `json:"account"`
	Token   string          `json:"token"`
	Asset   string          `json:"asset"`
	Amount  decimal.Decimal `json:"amount"`
}

func depositHandler(cfg *core.Config, ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := ledger.Deposit(r.Context(), account, params.Asset, params.Amount); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

func withdrawHandler(cfg *core.Config, ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := ledger.Withdraw(r.Context(), account, params.Asset, params.Amount); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

func compoundHandler(cfg *core.Config, ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		moved, err := ledger.CompoundYield(r.Context(), account, params.Asset)
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"moved": moved})
	}
}

func retireHandler(cfg *core.Config, ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := ledger.Retire(r.Context(), account, params.Asset); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

package ops

import (
	"net/http"
	"time"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
)

func borrowHandler(cfg *core.Config, credit core.ICreditService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := credit.Borrow(r.Context(), account, params.Asset, params.Amount, time.Now()); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

func repayHandler(cfg *core.Config, credit core.ICreditService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		applied, err := credit.Repay(r.Context(), account, params.Asset, params.Amount, time.Now())
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"applied": applied})
	}
}

func lendHandler(cfg *core.Config, credit core.ICreditService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := credit.OpenLend(r.Context(), account, params.Asset, params.Amount, time.Now()); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

func unlendHandler(cfg *core.Config, credit core.ICreditService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledgerParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := accountOf(cfg, params.Account, params.Token)
		if err := credit.CloseLend(r.Context(), account, params.Asset, params.Amount, time.Now()); err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, render.H{"ok": true})
	}
}

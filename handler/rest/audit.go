package rest

import (
	"net/http"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
)

func auditHandler(audits core.IAuditStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Asset string `json:"asset"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		balances, err := audits.PoolBalances(r.Context(), params.Asset)
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		overruns, err := audits.EncumbranceOverruns(r.Context(), params.Asset)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{
			"balances": balances,
			"balanced": balances.Balanced(),
			"overruns": overruns,
		})
	}
}

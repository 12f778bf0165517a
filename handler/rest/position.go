package rest

import (
	"errors"
	"net/http"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
	"tally/handler/views"
	"tally/internal/tally"
)

func positionsHandler(positions core.IPositionStore, encumbrances core.IEncumbranceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string `json:"account"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}
		if params.Account == "" {
			render.BadRequest(w, errors.New("account required"))
			return
		}

		all, err := positions.FindByAccount(r.Context(), params.Account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		positionViews := make([]*views.Position, 0, len(all))
		for _, position := range all {
			encumbrance, err := encumbrances.Find(r.Context(), position.AccountKey, position.AssetID)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			positionViews = append(positionViews, &views.Position{
				Position:   *position,
				Available:  tally.AvailablePrincipal(position.Principal, encumbrance.Total()),
				Encumbered: encumbrance.Total(),
			})
		}

		render.JSON(w, positionViews)
	}
}

package rest

import (
	"net/http"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
	"tally/handler/views"
)

func agreementsHandler(agreements core.IAgreementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Borrower string `json:"borrower"`
			State    string `json:"state"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		var (
			all []*core.Agreement
			err error
		)
		if params.Borrower != "" {
			all, err = agreements.FindByBorrower(r.Context(), params.Borrower)
		} else {
			all, err = agreements.ListByStatus(r.Context(), parseStatus(params.State))
		}
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		agreementViews := make([]*views.Agreement, 0, len(all))
		for _, agreement := range all {
			agreementViews = append(agreementViews, &views.Agreement{
				Agreement:  *agreement,
				StatusName: agreement.Status.String(),
			})
		}

		render.JSON(w, agreementViews)
	}
}

func parseStatus(state string) core.AgreementStatus {
	switch state {
	case "repaid":
		return core.AgreementStatusRepaid
	case "exercised":
		return core.AgreementStatusExercised
	case "defaulted":
		return core.AgreementStatusDefaulted
	default:
		return core.AgreementStatusActive
	}
}

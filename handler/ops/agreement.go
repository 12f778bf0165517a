package ops

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
	"tally/handler/views"
	"tally/pkg/id"
)

func openAgreementHandler(cfg *core.Config, agreements core.IAgreementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			TraceID       string          `json:"trace_id"`
			Asset         string          `json:"asset"`
			Borrower      string          `json:"borrower"`
			BorrowerToken string          `json:"borrower_token"`
			Lender        string          `json:"lender"`
			LenderToken   string          `json:"lender_token"`
			Principal     decimal.Decimal `json:"principal"`
			Collateral    decimal.Decimal `json:"collateral"`
			PenaltyBps    int64           `json:"penalty_bps"`
			DueAt         int64           `json:"due_at"`
			ExpireAt      int64           `json:"expire_at"`
			GracePeriod   int64           `json:"grace_period"`
			EarlyExercise bool            `json:"early_exercise"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.TraceID == "" {
			params.TraceID = id.GenTraceID()
		}

		agreement, err := agreements.Open(r.Context(), core.AgreementParams{
			TraceID:       params.TraceID,
			AssetID:       params.Asset,
			Borrower:      accountOf(cfg, params.Borrower, params.BorrowerToken),
			Lender:        accountOf(cfg, params.Lender, params.LenderToken),
			Principal:     params.Principal,
			Collateral:    params.Collateral,
			PenaltyBps:    params.PenaltyBps,
			DueAt:         params.DueAt,
			ExpireAt:      params.ExpireAt,
			GracePeriod:   params.GracePeriod,
			EarlyExercise: params.EarlyExercise,
		}, time.Now())
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, getAgreementView(agreement))
	}
}

func repayAgreementHandler(cfg *core.Config, agreements core.IAgreementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Trace       string          `json:"trace"`
			Caller      string          `json:"caller"`
			CallerToken string          `json:"caller_token"`
			Amount      decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		caller := accountOf(cfg, params.Caller, params.CallerToken)
		agreement, err := agreements.Repay(r.Context(), caller, params.Trace, params.Amount, time.Now())
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, getAgreementView(agreement))
	}
}

func exerciseAgreementHandler(cfg *core.Config, agreements core.IAgreementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Trace       string `json:"trace"`
			Caller      string `json:"caller"`
			CallerToken string `json:"caller_token"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		caller := accountOf(cfg, params.Caller, params.CallerToken)
		agreement, err := agreements.Exercise(r.Context(), caller, params.Trace, time.Now())
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, getAgreementView(agreement))
	}
}

func defaultAgreementHandler(cfg *core.Config, agreements core.IAgreementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Trace       string `json:"trace"`
			Caller      string `json:"caller"`
			CallerToken string `json:"caller_token"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		caller := accountOf(cfg, params.Caller, params.CallerToken)
		agreement, err := agreements.MarkDefault(r.Context(), caller, params.Trace, time.Now())
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, getAgreementView(agreement))
	}
}

func getAgreementView(agreement *core.Agreement) *views.Agreement {
	return &views.Agreement{
		Agreement:  *agreement,
		StatusName: agreement.Status.String(),
	}
}

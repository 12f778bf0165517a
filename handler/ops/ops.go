package ops

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"tally/core"
	"tally/handler/render"
	"tally/pkg/id"
)

// Handle mutating operations. Requests arrive from the upstream custodian,
// authenticated by an admin key; the body names the account being acted for.
func Handle(
	cfg *core.Config,
	ledger core.ILedgerService,
	vault core.IVaultService,
	credit core.ICreditService,
	agreements core.IAgreementService,
) http.Handler {
	router := chi.NewRouter()
	router.Use(adminOnly(cfg))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Post("/deposit", depositHandler(cfg, ledger))
	router.Post("/withdraw", withdrawHandler(cfg, ledger))
	router.Post("/compound", compoundHandler(cfg, ledger))
	router.Post("/retire", retireHandler(cfg, ledger))

	router.Post("/borrow", borrowHandler(cfg, credit))
	router.Post("/repay", repayHandler(cfg, credit))
	router.Post("/lend", lendHandler(cfg, credit))
	router.Post("/unlend", unlendHandler(cfg, credit))

	router.Post("/encumber", encumberHandler(cfg, vault))
	router.Post("/release", releaseHandler(cfg, vault))

	router.Post("/agreements", openAgreementHandler(cfg, agreements))
	router.Post("/agreements/{trace}/repay", repayAgreementHandler(cfg, agreements))
	router.Post("/agreements/{trace}/exercise", exerciseAgreementHandler(cfg, agreements))
	router.Post("/agreements/{trace}/default", defaultAgreementHandler(cfg, agreements))

	return router
}

// accountOf resolves the acting account. A request naming a token id gets its
// key derived from the configured ownership registry; a raw key passes
// through for custodians that derive it themselves.
func accountOf(cfg *core.Config, account, token string) string {
	if token != "" {
		return id.AccountKey(cfg.App.RegistryID, token)
	}

	return account
}

func adminOnly(cfg *core.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !cfg.IsAdmin(r.Header.Get("X-Admin-Key")) {
				render.ServiceError(w, core.ErrOperationForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

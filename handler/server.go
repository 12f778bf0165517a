package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"tally/core"
	"tally/handler/ops"
	"tally/handler/render"
	"tally/handler/rest"
)

// Server server
type Server struct {
	cfg          *core.Config
	pools        core.IPoolStore
	positions    core.IPositionStore
	encumbrances core.IEncumbranceStore
	agreements   core.IAgreementStore
	audits       core.IAuditStore
	ledgerz      core.ILedgerService
	vaultz       core.IVaultService
	creditz      core.ICreditService
	agreementz   core.IAgreementService
}

// New new server
func New(
	cfg *core.Config,
	pools core.IPoolStore,
	positions core.IPositionStore,
	encumbrances core.IEncumbranceStore,
	agreements core.IAgreementStore,
	audits core.IAuditStore,
	ledgerz core.ILedgerService,
	vaultz core.IVaultService,
	creditz core.ICreditService,
	agreementz core.IAgreementService,
) Server {
	return Server{
		cfg:          cfg,
		pools:        pools,
		positions:    positions,
		encumbrances: encumbrances,
		agreements:   agreements,
		audits:       audits,
		ledgerz:      ledgerz,
		vaultz:       vaultz,
		creditz:      creditz,
		agreementz:   agreementz,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	r.Mount("/ops", ops.Handle(s.cfg, s.ledgerz, s.vaultz, s.creditz, s.agreementz))
	r.Mount("/", rest.Handle(s.pools, s.positions, s.encumbrances, s.agreements, s.audits))

	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

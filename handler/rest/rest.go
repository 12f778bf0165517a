package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"tally/core"
	"tally/handler/render"
)

// Handle handle rest api request
func Handle(
	pools core.IPoolStore,
	positions core.IPositionStore,
	encumbrances core.IEncumbranceStore,
	agreements core.IAgreementStore,
	audits core.IAuditStore,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/pools", allPoolsHandler(pools))
	router.Get("/pools/{asset}", poolHandler(pools))
	router.Get("/positions", positionsHandler(positions, encumbrances))
	router.Get("/agreements", agreementsHandler(agreements))
	router.Get("/audit/{asset}", auditHandler(audits))

	return router
}

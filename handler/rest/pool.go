package rest

import (
	"net/http"

	"tally/core"
	"tally/handler/param"
	"tally/handler/render"
	"tally/handler/views"
)

func allPoolsHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := pools.All(r.Context())
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		poolViews := make([]*views.Pool, 0, len(all))
		for _, pool := range all {
			poolViews = append(poolViews, getPoolView(pool))
		}

		render.JSON(w, poolViews)
	}
}

func poolHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Asset string `json:"asset"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		pool, err := pools.Find(r.Context(), params.Asset)
		if err != nil {
			render.ServiceError(w, err)
			return
		}

		render.JSON(w, getPoolView(pool))
	}
}

func getPoolView(pool *core.Pool) *views.Pool {
	return &views.Pool{
		Pool:         *pool,
		PendingTotal: pool.PendingBuckets.Pending(),
	}
}

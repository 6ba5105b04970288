package authapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	mw "github.com/dropDatabas3/gacetilla/internal/httpx/middlewares"
)

// Router arma el router chi del auth service con la cadena estándar de
// middlewares y, si metricsHandler no es nil, expone /metrics.
func Router(ctrl *Controller, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/signin", ctrl.Signin)
	r.Post("/auth/signup", ctrl.Signup)
	r.Get("/healthz", Healthz)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	return mw.Chain(r,
		mw.WithRequestID(),
		mw.WithLogging(),
		httpx.WithMetrics,
		mw.WithRecover(),
	)
}

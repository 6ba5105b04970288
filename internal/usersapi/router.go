package usersapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	mw "github.com/dropDatabas3/gacetilla/internal/httpx/middlewares"
	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// Deps agrupa los controllers del user service.
type Deps struct {
	Store       *userstore.Store
	Permissions userstore.Permissions // decorado con cache
	Metrics     http.Handler          // nil = sin /metrics
}

// Router arma el router chi completo del user service.
func Router(deps Deps) http.Handler {
	users := NewUsersController(deps.Store)
	roles := NewRolesController(deps.Store)
	perms := NewPermissionsController(deps.Permissions)
	profiles := NewProfilesController(deps.Store)

	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.List)
		r.Post("/", users.Create)
		r.Get("/username/{username}", users.GetByUsername)
		r.Get("/email/{email}", users.GetByEmail)
		r.Get("/{id}", users.Get)
		r.Put("/{id}", users.Update)
		r.Delete("/{id}", users.Delete)
	})

	r.Route("/roles", func(r chi.Router) {
		r.Get("/", roles.List)
		r.Post("/", roles.Create)
		r.Get("/{id}", roles.Get)
		r.Put("/{id}", roles.Update)
		r.Delete("/{id}", roles.Delete)
	})

	r.Route("/permissions", func(r chi.Router) {
		r.Get("/", perms.List)
		r.Post("/", perms.Create)
		r.Get("/roles/{roleId}", perms.ListByRole)
		r.Get("/{id}", perms.Get)
		r.Put("/{id}", perms.Update)
		r.Delete("/{id}", perms.Delete)
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", profiles.List)
		r.Post("/", profiles.Create)
		r.Get("/{id}", profiles.Get)
		r.Put("/{id}", profiles.Update)
		r.Delete("/{id}", profiles.Delete)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteEnvelope(w, http.StatusOK, "ok", map[string]any{
			"status": "up",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	return mw.Chain(r,
		mw.WithRequestID(),
		mw.WithLogging(),
		httpx.WithMetrics,
		mw.WithRecover(),
	)
}

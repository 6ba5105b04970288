package usersapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// RolesController handles /roles requests.
type RolesController struct {
	store *userstore.Store
}

func NewRolesController(store *userstore.Store) *RolesController {
	return &RolesController{store: store}
}

func (c *RolesController) List(w http.ResponseWriter, r *http.Request) {
	roles, err := c.store.Roles.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "roles")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Roles Retrieved!", roles)
}

func (c *RolesController) Get(w http.ResponseWriter, r *http.Request) {
	role, err := c.store.Roles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "role")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Role Retrieved!", role)
}

type roleRequest struct {
	Name string `json:"name"`
}

func (c *RolesController) Create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteFieldErrors(w, "Error: Validation Failed!", map[string]string{"name": "name is required"})
		return
	}

	role := &userstore.Role{Name: req.Name}
	if err := c.store.Roles.Create(r.Context(), role); err != nil {
		if errors.Is(err, userstore.ErrConflict) {
			httpx.WriteError(w, http.StatusConflict, "Error: Role already exists!")
			return
		}
		writeStoreError(w, r, err, "role")
		return
	}
	httpx.WriteEnvelope(w, http.StatusCreated, "Role is Created!", role)
}

func (c *RolesController) Update(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteFieldErrors(w, "Error: Validation Failed!", map[string]string{"name": "name is required"})
		return
	}

	role := &userstore.Role{ID: chi.URLParam(r, "id"), Name: req.Name}
	if err := c.store.Roles.Update(r.Context(), role); err != nil {
		if errors.Is(err, userstore.ErrConflict) {
			httpx.WriteError(w, http.StatusConflict, "Error: Role already exists!")
			return
		}
		writeStoreError(w, r, err, "role")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Role Updated!", role)
}

func (c *RolesController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Roles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, err, "role")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Role Deleted!", nil)
}

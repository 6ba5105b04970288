package usersapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// PermissionsController handles /permissions requests. It runs over
// the cached decorator, so ListByRole reads hit the cache and writes
// invalidate it.
type PermissionsController struct {
	perms userstore.Permissions
}

func NewPermissionsController(perms userstore.Permissions) *PermissionsController {
	return &PermissionsController{perms: perms}
}

func (c *PermissionsController) List(w http.ResponseWriter, r *http.Request) {
	perms, err := c.perms.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "permissions")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Permissions Retrieved!", perms)
}

func (c *PermissionsController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.perms.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "permission")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Permission Retrieved!", p)
}

// ListByRole handles GET /permissions/roles/{roleId}. A role with no
// permissions answers 200 with an empty list, not 404; the composer on
// the auth side treats both the same way.
func (c *PermissionsController) ListByRole(w http.ResponseWriter, r *http.Request) {
	perms, err := c.perms.ListByRole(r.Context(), chi.URLParam(r, "roleId"))
	if err != nil {
		writeStoreError(w, r, err, "permissions")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Permissions Retrieved!", perms)
}

type permissionRequest struct {
	Name         string   `json:"name"`
	AllowedRoles []string `json:"allowedRoles"`
}

func (c *PermissionsController) Create(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteFieldErrors(w, "Error: Validation Failed!", map[string]string{"name": "name is required"})
		return
	}

	p := &userstore.Permission{Name: req.Name, AllowedRoles: req.AllowedRoles}
	if err := c.perms.Create(r.Context(), p); err != nil {
		if errors.Is(err, userstore.ErrConflict) {
			httpx.WriteError(w, http.StatusConflict, "Error: Permission already exists!")
			return
		}
		writeStoreError(w, r, err, "permission")
		return
	}
	httpx.WriteEnvelope(w, http.StatusCreated, "Permission is Created!", p)
}

func (c *PermissionsController) Update(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteFieldErrors(w, "Error: Validation Failed!", map[string]string{"name": "name is required"})
		return
	}

	p := &userstore.Permission{ID: chi.URLParam(r, "id"), Name: req.Name, AllowedRoles: req.AllowedRoles}
	if err := c.perms.Update(r.Context(), p); err != nil {
		if errors.Is(err, userstore.ErrConflict) {
			httpx.WriteError(w, http.StatusConflict, "Error: Permission already exists!")
			return
		}
		writeStoreError(w, r, err, "permission")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Permission Updated!", p)
}

func (c *PermissionsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.perms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, err, "permission")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Permission Deleted!", nil)
}

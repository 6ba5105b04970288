package usersapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// ProfilesController handles /profiles requests.
type ProfilesController struct {
	store *userstore.Store
}

func NewProfilesController(store *userstore.Store) *ProfilesController {
	return &ProfilesController{store: store}
}

func (c *ProfilesController) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := c.store.Profiles.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "profiles")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Profiles Retrieved!", profiles)
}

func (c *ProfilesController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.store.Profiles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "profile")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Profile Retrieved!", p)
}

type profileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

func (c *ProfilesController) Create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	p := &userstore.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}
	if err := c.store.Profiles.Create(r.Context(), p); err != nil {
		writeStoreError(w, r, err, "profile")
		return
	}
	httpx.WriteEnvelope(w, http.StatusCreated, "Profile is Created!", p)
}

func (c *ProfilesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := c.store.Profiles.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "profile")
		return
	}

	var req profileRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if req.FirstName != "" {
		p.FirstName = req.FirstName
	}
	if req.LastName != "" {
		p.LastName = req.LastName
	}
	if req.Bio != "" {
		p.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		p.AvatarURL = req.AvatarURL
	}

	if err := c.store.Profiles.Update(ctx, p); err != nil {
		writeStoreError(w, r, err, "profile")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Profile Updated!", p)
}

func (c *ProfilesController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Profiles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, err, "profile")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Profile Deleted!", nil)
}

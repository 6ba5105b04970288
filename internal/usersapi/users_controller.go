// Package usersapi exposes the user service HTTP surface: users,
// roles, permissions and profiles over the store.
package usersapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// UsersController handles /users requests.
type UsersController struct {
	store *userstore.Store
}

func NewUsersController(store *userstore.Store) *UsersController {
	return &UsersController{store: store}
}

// userView is the public shape of a user: no password hash.
type userView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	RoleID    string `json:"roleId,omitempty"`
	ProfileID string `json:"profileId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// credentialView adds the password hash. Only the by-username and
// by-email lookups use it: those are the reads the auth service does
// to verify credentials.
type credentialView struct {
	userView
	PasswordHash string `json:"passwordHash"`
}

func toUserView(u *userstore.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		RoleID:    u.RoleID,
		ProfileID: u.ProfileID,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: u.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toCredentialView(u *userstore.User) credentialView {
	return credentialView{userView: toUserView(u), PasswordHash: u.PasswordHash}
}

// List handles GET /users.
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.store.Users.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "users")
		return
	}
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(&users[i]))
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Users Retrieved!", views)
}

// Get handles GET /users/{id}.
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	u, err := c.store.Users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "User Retrieved!", toUserView(u))
}

// GetByUsername handles GET /users/username/{username}.
func (c *UsersController) GetByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := c.store.Users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "User Retrieved!", toCredentialView(u))
}

// GetByEmail handles GET /users/email/{email}.
func (c *UsersController) GetByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := c.store.Users.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "User Retrieved!", toCredentialView(u))
}

type createUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"` // role name
	Profile      *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Bio       string `json:"bio"`
		AvatarURL string `json:"avatarUrl"`
	} `json:"profile"`
}

// Create handles POST /users. The password arrives already hashed; the
// role comes by name and is resolved here.
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Create"))

	var req createUserRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	fields := map[string]string{}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if n := len(req.Username); n < 3 || n > 50 {
		fields["username"] = "username must be between 3 and 50 characters"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields["email"] = "email must be a valid address"
	}
	if req.PasswordHash == "" {
		fields["passwordHash"] = "passwordHash is required"
	}
	if len(fields) > 0 {
		httpx.WriteFieldErrors(w, "Error: Validation Failed!", fields)
		return
	}

	u := &userstore.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
	}

	// resolver rol por nombre; default "user" si existe
	roleName := req.Role
	if roleName == "" {
		roleName = "user"
	}
	role, err := c.store.Roles.GetByName(ctx, roleName)
	switch {
	case err == nil:
		u.RoleID = role.ID
	case errors.Is(err, userstore.ErrNotFound) && req.Role == "":
		// sin rol default seedeado: el usuario queda sin rol
	case errors.Is(err, userstore.ErrNotFound):
		httpx.WriteFieldErrors(w, "Error: Validation Failed!", map[string]string{"role": "role does not exist"})
		return
	default:
		writeStoreError(w, r, err, "role")
		return
	}

	if req.Profile != nil {
		p := &userstore.Profile{
			FirstName: req.Profile.FirstName,
			LastName:  req.Profile.LastName,
			Bio:       req.Profile.Bio,
			AvatarURL: req.Profile.AvatarURL,
		}
		if err := c.store.Profiles.Create(ctx, p); err != nil {
			writeStoreError(w, r, err, "profile")
			return
		}
		u.ProfileID = p.ID
	}

	if err := c.store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, userstore.ErrConflict) {
			httpx.WriteError(w, http.StatusConflict, "Error: User already exists!")
			return
		}
		writeStoreError(w, r, err, "user")
		return
	}

	log.Info("user created", logger.UserID(u.ID), logger.Username(u.Username))
	httpx.WriteEnvelope(w, http.StatusCreated, "User is Created!", toUserView(u))
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   string `json:"roleId"`
}

// Update handles PUT /users/{id}.
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := c.store.Users.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "user")
		return
	}

	var req updateUserRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if req.Username != "" {
		u.Username = strings.TrimSpace(req.Username)
	}
	if req.Email != "" {
		u.Email = strings.TrimSpace(req.Email)
	}
	if req.RoleID != "" {
		u.RoleID = req.RoleID
	}

	if err := c.store.Users.Update(ctx, u); err != nil {
		if errors.Is(err, userstore.ErrConflict) {
			httpx.WriteError(w, http.StatusConflict, "Error: Username or email already in use!")
			return
		}
		writeStoreError(w, r, err, "user")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "User Updated!", toUserView(u))
}

// Delete handles DELETE /users/{id}.
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "User Deleted!", nil)
}

// writeStoreError maps store errors to envelope responses.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	if errors.Is(err, userstore.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "Error: "+capitalize(entity)+" Not Found!")
		return
	}
	logger.From(r.Context()).Error("store operation failed",
		logger.Layer("controller"),
		logger.String("entity", entity),
		logger.Err(err),
	)
	httpx.WriteError(w, http.StatusInternalServerError, "Error: Internal Server Error")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

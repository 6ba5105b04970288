// Package authapi exposes the auth service HTTP surface: sign-in and
// sign-up on top of the identity core.
package authapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/identity"
	"github.com/dropDatabas3/gacetilla/internal/mail"
	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/security/password"
	"github.com/dropDatabas3/gacetilla/internal/token"
)

// Deps contains everything the auth controller needs.
type Deps struct {
	Verifier  *identity.Verifier
	Registrar *identity.Registrar
	Issuer    *token.Issuer
	Mail      mail.Sender // nil disables the welcome email
}

// Controller handles /auth requests.
type Controller struct {
	deps   Deps
	policy password.Policy
}

func NewController(deps Deps) *Controller {
	return &Controller{
		deps:   deps,
		policy: password.Policy{MinLength: 8},
	}
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type jwtResponse struct {
	Token       string   `json:"token"`
	Type        string   `json:"type"`
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Authorities []string `json:"authorities"`
	ExpiresAt   int64    `json:"expiresAt"`
}

// Signin handles POST /auth/signin.
func (c *Controller) Signin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Signin"))

	var req signinRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Error: Username and password are required!")
		return
	}

	principal, err := c.deps.Verifier.Verify(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			log.Debug("signin rejected", logger.Username(req.Username))
			httpx.WriteError(w, http.StatusUnauthorized, "Error: Invalid username or password!")
			return
		}
		log.Error("signin failed against user store", logger.Err(err))
		httpx.WriteError(w, http.StatusBadGateway, "Error: Service Unavailable")
		return
	}

	signed, exp, err := c.deps.Issuer.Issue(principal.ID, principal.Username)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "Error: Could not issue token")
		return
	}

	log.Info("user signed in",
		logger.UserID(principal.ID),
		logger.Username(principal.Username),
		logger.Count(len(principal.Authorities)),
	)
	httpx.WriteEnvelope(w, http.StatusOK, "User Successfully Logged In!", jwtResponse{
		Token:       signed,
		Type:        "Bearer",
		ID:          principal.ID,
		Username:    principal.Username,
		Email:       principal.Email,
		Authorities: principal.Authorities,
		ExpiresAt:   exp.Unix(),
	})
}

type signupRequest struct {
	Username string                 `json:"username"`
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Role     string                 `json:"role"`
	Profile  *identity.ProfileInput `json:"profile"`
}

type signupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   string `json:"roleId,omitempty"`
}

// Signup handles POST /auth/signup.
func (c *Controller) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Signup"))

	var req signupRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if fields := c.validateSignup(req); len(fields) > 0 {
		httpx.WriteFieldErrors(w, "Error: Validation Failed!", fields)
		return
	}

	user, err := c.deps.Registrar.Register(ctx, identity.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Profile:  req.Profile,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, "Error: Username is already taken!")
		case errors.Is(err, identity.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "Error: Email is already in use!")
		default:
			log.Error("signup failed", logger.Err(err))
			httpx.WriteError(w, http.StatusBadGateway, "Error: Could not create user")
		}
		return
	}

	// best-effort, never blocks the response
	go mail.SendWelcome(c.deps.Mail, user.Username, user.Email)

	httpx.WriteEnvelope(w, http.StatusCreated, "User is Created!", signupResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		RoleID:   user.RoleID,
	})
}

// validateSignup applies the syntactic rules: username 3-50 chars,
// password at least 8 and not on the common-password list, email with
// a plausible shape.
func (c *Controller) validateSignup(req signupRequest) map[string]string {
	fields := map[string]string{}
	if n := len(req.Username); n < 3 || n > 50 {
		fields["username"] = "username must be between 3 and 50 characters"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") || strings.ContainsAny(req.Email, " \t") {
		fields["email"] = "email must be a valid address"
	}
	if ok, _ := c.policy.Validate(req.Password); !ok {
		fields["password"] = "password must be at least 8 characters"
	} else if password.CommonPasswords.Contains(req.Password) {
		fields["password"] = "password is too common"
	}
	return fields
}

// Healthz handles GET /healthz.
func Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteEnvelope(w, http.StatusOK, "ok", map[string]any{
		"status": "up",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

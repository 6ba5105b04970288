package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/security/password"
)

// RegisterInput is a sign-up request after syntactic validation.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string // role name; empty lets the store pick its default
	Profile  *ProfileInput
}

// Registrar guards sign-up: uniqueness pre-checks, hashing and the
// create call against the store.
type Registrar struct {
	Client *Client
	Params password.Params
}

func NewRegistrar(client *Client) *Registrar {
	return &Registrar{Client: client, Params: password.Default}
}

// Register creates the account. The username and email pre-checks give
// precise errors in the common case; the store's UNIQUE constraints
// remain the authority, so a conflict that slips between check and
// create still comes back as the matching field error.
func (r *Registrar) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := r.checkAvailability(ctx, in); err != nil {
		return nil, err
	}

	hash, err := password.Hash(r.Params, in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %v", ErrCreateFailed, err)
	}

	u, err := r.Client.CreateUser(ctx, CreateUserInput{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Profile:      in.Profile,
	})
	if err != nil {
		if errors.Is(err, ErrConflictRemote) {
			// lost the race: find out which field clashed
			return nil, r.resolveConflict(ctx, in)
		}
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	logger.From(ctx).Info("user registered",
		logger.Component("identity.registrar"),
		logger.UserID(u.ID),
		logger.Username(u.Username),
	)
	return u, nil
}

func (r *Registrar) checkAvailability(ctx context.Context, in RegisterInput) error {
	_, err := r.Client.UserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("register pre-check: %w", err)
	}

	_, err = r.Client.UserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("register pre-check: %w", err)
	}
	return nil
}

// resolveConflict re-reads both fields after a 409 to report the right
// one. If neither read explains the conflict, fall back to the
// username error rather than a vague failure.
func (r *Registrar) resolveConflict(ctx context.Context, in RegisterInput) error {
	if _, err := r.Client.UserByUsername(ctx, in.Username); err == nil {
		return ErrUsernameTaken
	}
	if _, err := r.Client.UserByEmail(ctx, in.Email); err == nil {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Package identity implements the cross-service authentication core:
// verifying credentials, composing principals from the user service and
// registering new accounts. It talks to the user service over HTTP and
// holds no state of its own.
package identity

import "errors"

var (
	// ErrNotFound: the remote store answered 404 for the entity.
	ErrNotFound = errors.New("identity: not found")
	// ErrRemote: the remote store failed (network error or non-2xx
	// other than 404/409). Always wrapped with detail.
	ErrRemote = errors.New("identity: remote store failure")

	// ErrInvalidCredentials covers both unknown user and wrong
	// password. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	ErrUsernameTaken = errors.New("identity: username already taken")
	ErrEmailTaken    = errors.New("identity: email already in use")
	ErrCreateFailed  = errors.New("identity: user creation failed")

	// ErrConflictRemote: the store rejected a create with 409. The
	// registrar re-checks to find out which field clashed.
	ErrConflictRemote = errors.New("identity: remote conflict")
)

// Principal is the authenticated identity produced by the composer:
// the user plus the authority names granted through its role.
type Principal struct {
	ID          string
	Username    string
	Email       string
	RoleID      string
	Authorities []string
}

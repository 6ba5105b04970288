package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/security/password"
)

// dummyHash is verified against when the user does not exist, so a
// probe for an unknown username costs the same as a wrong password.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=1$AAAAAAAAAAAAAAAAAAAAAA$JXiSfguWcYZBgkA5sQ1U0kQTC5zeIPHP9G3Z61TdTJ0"

// Verifier checks credentials against the remote store and composes
// the principal on success.
type Verifier struct {
	Composer *Composer
}

func NewVerifier(composer *Composer) *Verifier {
	return &Verifier{Composer: composer}
}

// Verify returns the Principal when username and password match.
// Unknown user and wrong password both return ErrInvalidCredentials;
// nothing in the error or the timing says which one happened. Store
// failures are surfaced, not folded into the credential error.
func (v *Verifier) Verify(ctx context.Context, username, plain string) (Principal, error) {
	u, err := v.Composer.Client.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			password.Verify(plain, dummyHash)
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, fmt.Errorf("verify: %w", err)
	}

	if !password.Verify(plain, u.PasswordHash) {
		logger.From(ctx).Debug("password mismatch",
			logger.Component("identity.verifier"),
			logger.Username(username),
		)
		return Principal{}, ErrInvalidCredentials
	}

	p, err := v.Composer.Compose(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// user vanished between the two reads
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	return p, nil
}

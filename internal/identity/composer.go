package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
)

// Composer builds a Principal from the remote store: first the user,
// then the permissions of its role.
type Composer struct {
	Client *Client
}

func NewComposer(client *Client) *Composer {
	return &Composer{Client: client}
}

// Compose resolves username into a full Principal.
//
// An absent user is terminal (ErrNotFound). An absent permission set is
// not: a role the permission store does not know yields an empty
// authority set, because "no permissions assigned yet" is a valid state
// for a fresh role. Store failures on either read are surfaced as
// ErrRemote, never silently degraded.
func (c *Composer) Compose(ctx context.Context, username string) (Principal, error) {
	u, err := c.Client.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrNotFound
		}
		return Principal{}, fmt.Errorf("compose user: %w", err)
	}

	authorities := []string{}
	if u.RoleID != "" {
		perms, err := c.Client.PermissionsByRole(ctx, u.RoleID)
		switch {
		case errors.Is(err, ErrNotFound):
			// rol sin permisos registrados: set vacío
			logger.From(ctx).Debug("role has no permission entry",
				logger.Component("identity.composer"),
				logger.RoleID(u.RoleID),
			)
		case err != nil:
			return Principal{}, fmt.Errorf("compose permissions: %w", err)
		default:
			for _, p := range perms {
				authorities = append(authorities, p.Name)
			}
		}
	}

	return Principal{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		RoleID:      u.RoleID,
		Authorities: authorities,
	}, nil
}

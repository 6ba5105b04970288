// Package cached decora repositorios de userstore con un cache
// read-through. Hoy sólo cubre Permissions.ListByRole, la lectura
// caliente del flujo de login.
package cached

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dropDatabas3/gacetilla/internal/cache"
	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// Permissions envuelve un userstore.Permissions con cache por rol.
// Las escrituras invalidan todo el espacio de keys de permisos porque
// un cambio en AllowedRoles afecta a varios roles a la vez.
type Permissions struct {
	inner userstore.Permissions
	cache cache.Client
	ttl   time.Duration

	// roles vistos, para invalidar sin SCAN en redis
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewPermissions(inner userstore.Permissions, c cache.Client, ttl time.Duration) *Permissions {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Permissions{
		inner: inner,
		cache: c,
		ttl:   ttl,
		seen:  make(map[string]struct{}),
	}
}

func permKey(roleID string) string { return "perms:role:" + roleID }

// ListByRole intenta el cache primero; ante miss o error de decode va
// al repositorio y guarda el resultado. Un error del cache nunca
// reemplaza la respuesta del repositorio.
func (p *Permissions) ListByRole(ctx context.Context, roleID string) ([]userstore.Permission, error) {
	key := permKey(roleID)

	if raw, err := p.cache.Get(ctx, key); err == nil {
		var perms []userstore.Permission
		if err := json.Unmarshal([]byte(raw), &perms); err == nil {
			return perms, nil
		}
		// entrada corrupta: la borramos y seguimos al repo
		_ = p.cache.Delete(ctx, key)
	}

	perms, err := p.inner.ListByRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(perms); err == nil {
		if err := p.cache.Set(ctx, key, string(raw), p.ttl); err != nil {
			logger.From(ctx).Warn("permission cache set failed",
				logger.Component("cached.permissions"),
				logger.RoleID(roleID),
				logger.Err(err),
			)
		} else {
			p.mu.Lock()
			p.seen[roleID] = struct{}{}
			p.mu.Unlock()
		}
	}
	return perms, nil
}

func (p *Permissions) GetByID(ctx context.Context, id string) (*userstore.Permission, error) {
	return p.inner.GetByID(ctx, id)
}

func (p *Permissions) List(ctx context.Context) ([]userstore.Permission, error) {
	return p.inner.List(ctx)
}

func (p *Permissions) Create(ctx context.Context, perm *userstore.Permission) error {
	if err := p.inner.Create(ctx, perm); err != nil {
		return err
	}
	p.invalidate(ctx)
	return nil
}

func (p *Permissions) Update(ctx context.Context, perm *userstore.Permission) error {
	if err := p.inner.Update(ctx, perm); err != nil {
		return err
	}
	p.invalidate(ctx)
	return nil
}

func (p *Permissions) Delete(ctx context.Context, id string) error {
	if err := p.inner.Delete(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx)
	return nil
}

func (p *Permissions) invalidate(ctx context.Context) {
	p.mu.Lock()
	roles := make([]string, 0, len(p.seen))
	for roleID := range p.seen {
		roles = append(roles, roleID)
		delete(p.seen, roleID)
	}
	p.mu.Unlock()

	for _, roleID := range roles {
		_ = p.cache.Delete(ctx, permKey(roleID))
	}
}

package cached

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/gacetilla/internal/cache"
	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// fakePermissions cuenta llamadas a ListByRole para verificar el read-through.
type fakePermissions struct {
	perms map[string][]userstore.Permission
	calls int
}

func (f *fakePermissions) GetByID(ctx context.Context, id string) (*userstore.Permission, error) {
	return nil, userstore.ErrNotFound
}

func (f *fakePermissions) List(ctx context.Context) ([]userstore.Permission, error) {
	return nil, nil
}

func (f *fakePermissions) ListByRole(ctx context.Context, roleID string) ([]userstore.Permission, error) {
	f.calls++
	return f.perms[roleID], nil
}

func (f *fakePermissions) Create(ctx context.Context, p *userstore.Permission) error { return nil }
func (f *fakePermissions) Update(ctx context.Context, p *userstore.Permission) error { return nil }
func (f *fakePermissions) Delete(ctx context.Context, id string) error               { return nil }

func TestListByRoleReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &fakePermissions{perms: map[string][]userstore.Permission{
		"role-1": {{ID: "p1", Name: "read_article"}, {ID: "p2", Name: "write_article"}},
	}}
	c := NewPermissions(inner, cache.NewMemory("", time.Minute), time.Minute)

	first, err := c.ListByRole(ctx, "role-1")
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("len = %d, esperaba 2", len(first))
	}
	if inner.calls != 1 {
		t.Fatalf("calls = %d, esperaba 1", inner.calls)
	}

	// Segundo read sale del cache y devuelve lo mismo
	second, err := c.ListByRole(ctx, "role-1")
	if err != nil {
		t.Fatalf("ListByRole (hit): %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("calls tras hit = %d, esperaba 1", inner.calls)
	}
	if len(second) != len(first) || second[0].Name != first[0].Name || second[1].Name != first[1].Name {
		t.Fatalf("el hit de cache devolvió algo distinto: %+v vs %+v", second, first)
	}
}

func TestWriteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	inner := &fakePermissions{perms: map[string][]userstore.Permission{
		"role-1": {{ID: "p1", Name: "read_article"}},
	}}
	c := NewPermissions(inner, cache.NewMemory("", time.Minute), time.Minute)

	if _, err := c.ListByRole(ctx, "role-1"); err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if err := c.Create(ctx, &userstore.Permission{Name: "delete_article"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Tras la escritura, el próximo read va al repo de nuevo
	if _, err := c.ListByRole(ctx, "role-1"); err != nil {
		t.Fatalf("ListByRole tras Create: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("calls = %d, esperaba 2 (invalidación)", inner.calls)
	}
}

func TestListByRoleEmptyIsCacheable(t *testing.T) {
	ctx := context.Background()
	inner := &fakePermissions{perms: map[string][]userstore.Permission{}}
	c := NewPermissions(inner, cache.NewMemory("", time.Minute), time.Minute)

	perms, err := c.ListByRole(ctx, "role-sin-permisos")
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(perms) != 0 {
		t.Fatalf("esperaba slice vacío, got %+v", perms)
	}
}

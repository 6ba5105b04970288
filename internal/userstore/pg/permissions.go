package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

type permissionRepo struct {
	pool *pgxpool.Pool
}

func (r *permissionRepo) GetByID(ctx context.Context, id string) (*userstore.Permission, error) {
	const query = `
		SELECT p.id, p.name,
		       COALESCE(array_agg(pr.role_id::text) FILTER (WHERE pr.role_id IS NOT NULL), '{}')
		FROM permission p
		LEFT JOIN permission_role pr ON pr.permission_id = p.id
		WHERE p.id = $1
		GROUP BY p.id, p.name
	`
	var p userstore.Permission
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.AllowedRoles)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, userstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *permissionRepo) List(ctx context.Context) ([]userstore.Permission, error) {
	const query = `
		SELECT p.id, p.name,
		       COALESCE(array_agg(pr.role_id::text) FILTER (WHERE pr.role_id IS NOT NULL), '{}')
		FROM permission p
		LEFT JOIN permission_role pr ON pr.permission_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

// ListByRole retorna los permisos asignados al rol. Rol sin permisos
// (o inexistente) retorna slice vacío.
func (r *permissionRepo) ListByRole(ctx context.Context, roleID string) ([]userstore.Permission, error) {
	const query = `
		SELECT p.id, p.name, '{}'::text[]
		FROM permission p
		JOIN permission_role pr ON pr.permission_id = p.id
		WHERE pr.role_id = $1
		ORDER BY p.name
	`
	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

func collectPermissions(rows pgx.Rows) ([]userstore.Permission, error) {
	perms := []userstore.Permission{}
	for rows.Next() {
		var p userstore.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.AllowedRoles); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *permissionRepo) Create(ctx context.Context, p *userstore.Permission) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO permission (id, name) VALUES ($1, $2)`, p.ID, p.Name)
	if isUniqueViolation(err) {
		return userstore.ErrConflict
	}
	if err != nil {
		return err
	}
	for _, roleID := range p.AllowedRoles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO permission_role (permission_id, role_id) VALUES ($1, $2)`,
			p.ID, roleID,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *permissionRepo) Update(ctx context.Context, p *userstore.Permission) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE permission SET name = $2 WHERE id = $1`, p.ID, p.Name)
	if isUniqueViolation(err) {
		return userstore.ErrConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userstore.ErrNotFound
	}

	// Reemplazo completo de los roles asignados
	if _, err := tx.Exec(ctx, `DELETE FROM permission_role WHERE permission_id = $1`, p.ID); err != nil {
		return err
	}
	for _, roleID := range p.AllowedRoles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO permission_role (permission_id, role_id) VALUES ($1, $2)`,
			p.ID, roleID,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *permissionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permission WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userstore.ErrNotFound
	}
	return nil
}

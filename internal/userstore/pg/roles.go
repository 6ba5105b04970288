package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

type roleRepo struct {
	pool *pgxpool.Pool
}

func scanRole(row pgx.Row) (*userstore.Role, error) {
	var ro userstore.Role
	err := row.Scan(&ro.ID, &ro.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, userstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ro, nil
}

func (r *roleRepo) GetByID(ctx context.Context, id string) (*userstore.Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT id, name FROM role WHERE id = $1`, id))
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*userstore.Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT id, name FROM role WHERE name = $1`, name))
}

func (r *roleRepo) List(ctx context.Context) ([]userstore.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM role ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []userstore.Role
	for rows.Next() {
		var ro userstore.Role
		if err := rows.Scan(&ro.ID, &ro.Name); err != nil {
			return nil, err
		}
		roles = append(roles, ro)
	}
	return roles, rows.Err()
}

func (r *roleRepo) Create(ctx context.Context, ro *userstore.Role) error {
	if ro.ID == "" {
		ro.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO role (id, name) VALUES ($1, $2)`, ro.ID, ro.Name)
	if isUniqueViolation(err) {
		return userstore.ErrConflict
	}
	return err
}

func (r *roleRepo) Update(ctx context.Context, ro *userstore.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE role SET name = $2 WHERE id = $1`, ro.ID, ro.Name)
	if isUniqueViolation(err) {
		return userstore.ErrConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userstore.ErrNotFound
	}
	return nil
}

func (r *roleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userstore.ErrNotFound
	}
	return nil
}

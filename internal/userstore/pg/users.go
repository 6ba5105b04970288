package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userCols = `id, username, email, password_hash, COALESCE(role_id::text, ''), COALESCE(profile_id::text, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*userstore.User, error) {
	var u userstore.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.RoleID, &u.ProfileID, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, userstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*userstore.User, error) {
	const query = `SELECT ` + userCols + ` FROM app_user WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*userstore.User, error) {
	const query = `SELECT ` + userCols + ` FROM app_user WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*userstore.User, error) {
	const query = `SELECT ` + userCols + ` FROM app_user WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepo) List(ctx context.Context) ([]userstore.User, error) {
	const query = `SELECT ` + userCols + ` FROM app_user ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []userstore.User
	for rows.Next() {
		var u userstore.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.RoleID, &u.ProfileID, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Create(ctx context.Context, u *userstore.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	const query = `
		INSERT INTO app_user (id, username, email, password_hash, role_id, profile_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, NULLIF($6, '')::uuid, $7, $7)
	`
	_, err := r.pool.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.RoleID, u.ProfileID, now)
	if isUniqueViolation(err) {
		return userstore.ErrConflict
	}
	return err
}

func (r *userRepo) Update(ctx context.Context, u *userstore.User) error {
	const query = `
		UPDATE app_user
		SET username = $2, email = $3, password_hash = $4,
		    role_id = NULLIF($5, '')::uuid, profile_id = NULLIF($6, '')::uuid,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.RoleID, u.ProfileID)
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

func (r *userRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userstore.ErrNotFound
	}
	return nil
}

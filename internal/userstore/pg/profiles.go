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

type profileRepo struct {
	pool *pgxpool.Pool
}

const profileCols = `id, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(bio, ''), COALESCE(avatar_url, ''), created_at, updated_at`

func scanProfile(row pgx.Row) (*userstore.Profile, error) {
	var p userstore.Profile
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Bio, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, userstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*userstore.Profile, error) {
	const query = `SELECT ` + profileCols + ` FROM profile WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *profileRepo) List(ctx context.Context) ([]userstore.Profile, error) {
	const query = `SELECT ` + profileCols + ` FROM profile ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []userstore.Profile
	for rows.Next() {
		var p userstore.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Bio, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) Create(ctx context.Context, p *userstore.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	const query = `
		INSERT INTO profile (id, first_name, last_name, bio, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`
	_, err := r.pool.Exec(ctx, query, p.ID, p.FirstName, p.LastName, p.Bio, p.AvatarURL, now)
	return err
}

func (r *profileRepo) Update(ctx context.Context, p *userstore.Profile) error {
	const query = `
		UPDATE profile
		SET first_name = $2, last_name = $3, bio = $4, avatar_url = $5, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.FirstName, p.LastName, p.Bio, p.AvatarURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userstore.ErrNotFound
	}
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profile WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userstore.ErrNotFound
	}
	return nil
}

// Package pg implementa los repositorios de userstore sobre PostgreSQL
// usando pgxpool. Mapea pgx.ErrNoRows a userstore.ErrNotFound y las
// violaciones de UNIQUE (23505) a userstore.ErrConflict.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gacetilla/internal/userstore"
)

// New abre un pool contra dsn y arma el Store completo.
func New(ctx context.Context, dsn string, maxConns int, connMaxLifetime time.Duration) (*userstore.Store, *pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	if connMaxLifetime > 0 {
		cfg.MaxConnLifetime = connMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pg: ping: %w", err)
	}

	return NewStore(pool), pool, nil
}

// NewStore arma el Store sobre un pool existente.
func NewStore(pool *pgxpool.Pool) *userstore.Store {
	return &userstore.Store{
		Users:       &userRepo{pool: pool},
		Roles:       &roleRepo{pool: pool},
		Permissions: &permissionRepo{pool: pool},
		Profiles:    &profileRepo{pool: pool},
	}
}

// isUniqueViolation detecta violaciones de constraint UNIQUE.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}

// Package migrations embeds SQL migration files.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var FS embed.FS

// Up aplica las migraciones *_up.sql embebidas, en orden ascendente.
// Las migraciones son idempotentes (IF NOT EXISTS), así que correrlas
// en cada arranque es seguro.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		b, err := FS.ReadFile(f)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("migrations: exec %s: %w", f, err)
		}
	}
	return nil
}

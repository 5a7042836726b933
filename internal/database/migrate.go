package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

type dialect struct {
	goose goose.Dialect
	dir   string
}

var (
	dialectSQLite   = dialect{goose: goose.DialectSQLite3, dir: "migrations/sqlite"}
	dialectPostgres = dialect{goose: goose.DialectPostgres, dir: "migrations/postgres"}
)

// migrate runs every pending goose migration for the given dialect.
func migrate(ctx context.Context, db *sql.DB, d dialect, logger *slog.Logger) error {
	fsys, err := fs.Sub(migrationsFS, d.dir)
	if err != nil {
		return fmt.Errorf("unable to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(d.goose, db, fsys)
	if err != nil {
		return fmt.Errorf("unable to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		logger.Debug("migration applied",
			slog.String("dialect", string(d.goose)),
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}

	return nil
}

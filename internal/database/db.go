package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapPostgresError converts pgx errors into domain errors. Anything that is
// not a "no rows" or constraint error is reported as the storage engine
// being unavailable, which callers degrade around.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502", "23503", "23505": // not_null, foreign_key, unique
			return fmt.Errorf("%w: %s", models.ErrBadRequest, pgErr.Message)
		}
	}

	return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
}

// MapSQLiteError is the sqlite counterpart of MapPostgresError.
func MapSQLiteError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}

	return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
}

package repositories

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/BradenHooton/eventease/internal/database"
	"github.com/stretchr/testify/require"
)

// newTestSQLite opens a migrated sqlite database in a temp dir
func newTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

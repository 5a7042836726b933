//go:build integration

package repositories

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/eventease/internal/database"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestPostgres starts a throwaway Postgres container and applies the
// migrations.
func newTestPostgres(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("eventease"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := database.NewFromPool(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.HealthCheck(ctx))
	return db
}

func TestPostgresLocalStorage(t *testing.T) {
	db := newTestPostgres(t)
	ctx := context.Background()
	storage := NewPostgresLocalStorage(db)

	_, err := storage.GetItem(ctx, KeyToken)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, storage.SetItem(ctx, KeyToken, "first"))
	require.NoError(t, storage.SetItem(ctx, KeyToken, "second"))

	value, err := storage.GetItem(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	require.NoError(t, storage.RemoveItem(ctx, KeyToken))
	_, err = storage.GetItem(ctx, KeyToken)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// removing a missing key is not an error
	assert.NoError(t, storage.RemoveItem(ctx, KeyToken))
}

func TestPostgresReceiptRepository(t *testing.T) {
	db := newTestPostgres(t)
	ctx := context.Background()
	repo := NewPostgresReceiptRepository(db)

	_, err := repo.Get(ctx, "b1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repo.Save(ctx, &models.ReceiptBlob{
		BookingID:   "b1",
		Content:     []byte("%PDF-1.4 old"),
		ContentType: "application/pdf",
		FileName:    "old.pdf",
	}))
	require.NoError(t, repo.Save(ctx, &models.ReceiptBlob{
		BookingID:   "b1",
		Content:     []byte("%PDF-1.4 new"),
		ContentType: "application/pdf",
		FileName:    "new.pdf",
	}))

	blob, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 new"), blob.Content)
	assert.Equal(t, "new.pdf", blob.FileName)
	assert.False(t, blob.StoredAt.IsZero())

	require.NoError(t, repo.Delete(ctx, "b1"))
	_, err = repo.Get(ctx, "b1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostgres_SharedStateAcrossRepositories(t *testing.T) {
	db := newTestPostgres(t)
	ctx := context.Background()

	drafts := NewDraftRepository(NewPostgresLocalStorage(db))
	require.NoError(t, drafts.Upsert(ctx, map[string]any{"id": "b_1", "event": "Wedding"}))

	// a second client on the same database sees the draft
	other := NewDraftRepository(NewPostgresLocalStorage(db))
	got, err := other.Get(ctx, "b_1")
	require.NoError(t, err)
	assert.Equal(t, "Wedding", got["event"])
}

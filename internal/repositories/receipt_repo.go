package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/BradenHooton/eventease/internal/database"
	"github.com/BradenHooton/eventease/internal/models"
)

// SQLiteReceiptRepository is the object store for receipt blobs, one row
// per booking id.
type SQLiteReceiptRepository struct {
	db *sql.DB
}

func NewSQLiteReceiptRepository(db *sql.DB) *SQLiteReceiptRepository {
	return &SQLiteReceiptRepository{db: db}
}

// Save inserts or overwrites the receipt for blob.BookingID
func (r *SQLiteReceiptRepository) Save(ctx context.Context, blob *models.ReceiptBlob) error {
	query := `
		INSERT INTO receipts (booking_id, content, content_type, file_name, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (booking_id) DO UPDATE SET
			content = excluded.content,
			content_type = excluded.content_type,
			file_name = excluded.file_name,
			stored_at = excluded.stored_at
	`
	storedAt := blob.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query, blob.BookingID, blob.Content, blob.ContentType, blob.FileName, storedAt)
	return database.MapSQLiteError(err)
}

func (r *SQLiteReceiptRepository) Get(ctx context.Context, bookingID string) (*models.ReceiptBlob, error) {
	query := `
		SELECT booking_id, content, content_type, file_name, stored_at
		FROM receipts WHERE booking_id = ?
	`
	blob := &models.ReceiptBlob{}
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&blob.BookingID,
		&blob.Content,
		&blob.ContentType,
		&blob.FileName,
		&blob.StoredAt,
	)
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}
	return blob, nil
}

func (r *SQLiteReceiptRepository) Delete(ctx context.Context, bookingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM receipts WHERE booking_id = ?`, bookingID)
	return database.MapSQLiteError(err)
}

// PostgresReceiptRepository is the shared-database variant.
type PostgresReceiptRepository struct {
	db *database.DB
}

func NewPostgresReceiptRepository(db *database.DB) *PostgresReceiptRepository {
	return &PostgresReceiptRepository{db: db}
}

func (r *PostgresReceiptRepository) Save(ctx context.Context, blob *models.ReceiptBlob) error {
	query := `
		INSERT INTO receipts (booking_id, content, content_type, file_name, stored_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (booking_id) DO UPDATE SET
			content = EXCLUDED.content,
			content_type = EXCLUDED.content_type,
			file_name = EXCLUDED.file_name,
			stored_at = NOW()
	`
	_, err := r.db.Pool.Exec(ctx, query, blob.BookingID, blob.Content, blob.ContentType, blob.FileName)
	return database.MapPostgresError(err)
}

func (r *PostgresReceiptRepository) Get(ctx context.Context, bookingID string) (*models.ReceiptBlob, error) {
	query := `
		SELECT booking_id, content, content_type, file_name, stored_at
		FROM receipts WHERE booking_id = $1
	`
	blob := &models.ReceiptBlob{}
	err := r.db.Pool.QueryRow(ctx, query, bookingID).Scan(
		&blob.BookingID,
		&blob.Content,
		&blob.ContentType,
		&blob.FileName,
		&blob.StoredAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return blob, nil
}

func (r *PostgresReceiptRepository) Delete(ctx context.Context, bookingID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM receipts WHERE booking_id = $1`, bookingID)
	return database.MapPostgresError(err)
}

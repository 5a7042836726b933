package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/BradenHooton/eventease/internal/database"
)

// LocalStorage is a string key/value store with the same contract as the
// browser's localStorage: missing keys yield models.ErrNotFound and every
// write is last-write-wins.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Keys shared with every client reading the same storage
const (
	KeyToken           = "token"
	KeyLoginAttempts   = "loginAttempts"
	KeyBookings        = "ee_bookings"
	KeyActiveBookingID = "ee_active_booking_id"
	KeyPendingMFA      = "ee_pending_mfa"
	KeyLastPath        = "ee_last_path"
)

// SQLiteLocalStorage stores items in the embedded sqlite database.
type SQLiteLocalStorage struct {
	db *sql.DB
}

func NewSQLiteLocalStorage(db *sql.DB) *SQLiteLocalStorage {
	return &SQLiteLocalStorage{db: db}
}

func (s *SQLiteLocalStorage) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", database.MapSQLiteError(err)
	}
	return value, nil
}

func (s *SQLiteLocalStorage) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return database.MapSQLiteError(err)
}

func (s *SQLiteLocalStorage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key)
	return database.MapSQLiteError(err)
}

// PostgresLocalStorage stores items in a shared Postgres database.
type PostgresLocalStorage struct {
	db *database.DB
}

func NewPostgresLocalStorage(db *database.DB) *PostgresLocalStorage {
	return &PostgresLocalStorage{db: db}
}

func (s *PostgresLocalStorage) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.Pool.QueryRow(ctx, `SELECT value FROM local_storage WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return "", database.MapPostgresError(err)
	}
	return value, nil
}

func (s *PostgresLocalStorage) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := s.db.Pool.Exec(ctx, query, key, value)
	return database.MapPostgresError(err)
}

func (s *PostgresLocalStorage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM local_storage WHERE key = $1`, key)
	return database.MapPostgresError(err)
}

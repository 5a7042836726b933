package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BradenHooton/eventease/internal/models"
)

// LoginAttemptRepository persists the process-wide attempt record as a
// versioned JSON document in local storage.
type LoginAttemptRepository struct {
	storage LocalStorage
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(storage LocalStorage) *LoginAttemptRepository {
	return &LoginAttemptRepository{storage: storage}
}

// Load returns the stored record. A missing, unreadable or outdated record
// loads as the zero record.
func (r *LoginAttemptRepository) Load(ctx context.Context) (models.AttemptRecord, error) {
	raw, err := r.storage.GetItem(ctx, KeyLoginAttempts)
	if errors.Is(err, models.ErrNotFound) {
		return models.AttemptRecord{Version: models.AttemptRecordVersion}, nil
	}
	if err != nil {
		return models.AttemptRecord{Version: models.AttemptRecordVersion}, err
	}

	var rec models.AttemptRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Version != models.AttemptRecordVersion {
		return models.AttemptRecord{Version: models.AttemptRecordVersion}, nil
	}
	return rec, nil
}

// Save overwrites the stored record (last write wins).
func (r *LoginAttemptRepository) Save(ctx context.Context, rec models.AttemptRecord) error {
	if rec.IsZero() {
		return r.Clear(ctx)
	}

	rec.Version = models.AttemptRecordVersion
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode attempt record: %w", err)
	}
	return r.storage.SetItem(ctx, KeyLoginAttempts, string(data))
}

// Clear removes the stored record.
func (r *LoginAttemptRepository) Clear(ctx context.Context) error {
	return r.storage.RemoveItem(ctx, KeyLoginAttempts)
}

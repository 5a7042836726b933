package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BradenHooton/eventease/internal/models"
)

// PreferenceRepository holds small pieces of client state: the last
// active booking, the pending MFA identity and the last visited path.
type PreferenceRepository struct {
	storage LocalStorage
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(storage LocalStorage) *PreferenceRepository {
	return &PreferenceRepository{storage: storage}
}

func (r *PreferenceRepository) ActiveBookingID(ctx context.Context) (string, error) {
	return r.getString(ctx, KeyActiveBookingID)
}

func (r *PreferenceRepository) SetActiveBookingID(ctx context.Context, id string) error {
	return r.storage.SetItem(ctx, KeyActiveBookingID, id)
}

func (r *PreferenceRepository) LastPath(ctx context.Context) (string, error) {
	return r.getString(ctx, KeyLastPath)
}

func (r *PreferenceRepository) SetLastPath(ctx context.Context, path string) error {
	return r.storage.SetItem(ctx, KeyLastPath, path)
}

// PendingMFA returns the identity waiting for MFA verification.
func (r *PreferenceRepository) PendingMFA(ctx context.Context) (*models.PendingMFA, error) {
	raw, err := r.storage.GetItem(ctx, KeyPendingMFA)
	if err != nil {
		return nil, err
	}

	var pending models.PendingMFA
	if err := json.Unmarshal([]byte(raw), &pending); err != nil || pending.UserID == "" {
		return nil, models.ErrNotFound
	}
	return &pending, nil
}

func (r *PreferenceRepository) SetPendingMFA(ctx context.Context, pending models.PendingMFA) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to encode pending mfa: %w", err)
	}
	return r.storage.SetItem(ctx, KeyPendingMFA, string(data))
}

func (r *PreferenceRepository) ClearPendingMFA(ctx context.Context) error {
	return r.storage.RemoveItem(ctx, KeyPendingMFA)
}

func (r *PreferenceRepository) getString(ctx context.Context, key string) (string, error) {
	value, err := r.storage.GetItem(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return "", nil
	}
	return value, err
}

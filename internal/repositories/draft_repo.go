package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BradenHooton/eventease/internal/models"
)

// DraftRepository keeps locally created bookings (drafts and their payment
// sub-records) as a JSON array under a single local-storage key, in the
// shape the booking form produced them.
type DraftRepository struct {
	storage LocalStorage
}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository(storage LocalStorage) *DraftRepository {
	return &DraftRepository{storage: storage}
}

// List returns every stored draft. Unreadable content lists as empty.
func (r *DraftRepository) List(ctx context.Context) ([]map[string]any, error) {
	raw, err := r.storage.GetItem(ctx, KeyBookings)
	if errors.Is(err, models.ErrNotFound) {
		return []map[string]any{}, nil
	}
	if err != nil {
		return []map[string]any{}, err
	}

	var drafts []map[string]any
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return []map[string]any{}, nil
	}
	return drafts, nil
}

// Get returns the draft with the given id.
func (r *DraftRepository) Get(ctx context.Context, id string) (map[string]any, error) {
	drafts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drafts {
		if draftID(d) == id {
			return d, nil
		}
	}
	return nil, models.ErrNotFound
}

// Upsert replaces the draft with the same id or appends a new one.
func (r *DraftRepository) Upsert(ctx context.Context, draft map[string]any) error {
	id := draftID(draft)
	if id == "" {
		return fmt.Errorf("%w: draft has no id", models.ErrBadRequest)
	}

	drafts, err := r.List(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i, d := range drafts {
		if draftID(d) == id {
			drafts[i] = draft
			replaced = true
			break
		}
	}
	if !replaced {
		drafts = append(drafts, draft)
	}

	data, err := json.Marshal(drafts)
	if err != nil {
		return fmt.Errorf("failed to encode drafts: %w", err)
	}
	return r.storage.SetItem(ctx, KeyBookings, string(data))
}

func draftID(d map[string]any) string {
	id, _ := d["id"].(string)
	return id
}

package repositories

import (
	"context"

	"github.com/BradenHooton/eventease/internal/models"
)

// UnavailableStorage stands in when no storage engine could be opened.
// Every call fails with models.ErrStorageUnavailable so callers take their
// "no local data" path instead of crashing.
type UnavailableStorage struct{}

func (UnavailableStorage) GetItem(ctx context.Context, key string) (string, error) {
	return "", models.ErrStorageUnavailable
}

func (UnavailableStorage) SetItem(ctx context.Context, key, value string) error {
	return models.ErrStorageUnavailable
}

func (UnavailableStorage) RemoveItem(ctx context.Context, key string) error {
	return models.ErrStorageUnavailable
}

func (UnavailableStorage) Save(ctx context.Context, blob *models.ReceiptBlob) error {
	return models.ErrStorageUnavailable
}

func (UnavailableStorage) Get(ctx context.Context, bookingID string) (*models.ReceiptBlob, error) {
	return nil, models.ErrStorageUnavailable
}

func (UnavailableStorage) Delete(ctx context.Context, bookingID string) error {
	return models.ErrStorageUnavailable
}

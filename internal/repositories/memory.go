package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/BradenHooton/eventease/internal/models"
)

// MemoryStorage is an ephemeral LocalStorage and receipt store. Nothing
// survives the process; used for the "memory" driver and in tests.
type MemoryStorage struct {
	mu       sync.RWMutex
	items    map[string]string
	receipts map[string]models.ReceiptBlob
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items:    make(map[string]string),
		receipts: make(map[string]models.ReceiptBlob),
	}
}

func (m *MemoryStorage) GetItem(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	if !ok {
		return "", models.ErrNotFound
	}
	return value, nil
}

func (m *MemoryStorage) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

func (m *MemoryStorage) Save(ctx context.Context, blob *models.ReceiptBlob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *blob
	stored.Content = append([]byte(nil), blob.Content...)
	if stored.StoredAt.IsZero() {
		stored.StoredAt = time.Now().UTC()
	}
	m.receipts[blob.BookingID] = stored
	return nil
}

func (m *MemoryStorage) Get(ctx context.Context, bookingID string) (*models.ReceiptBlob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.receipts[bookingID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &blob, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.receipts, bookingID)
	return nil
}

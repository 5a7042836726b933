package receipts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/jonboulle/clockwork"
)

var (
	ErrTooLarge        = errors.New("receipt must be 20MB or less")
	ErrUnsupportedType = errors.New("receipt must be an image or a PDF")
	ErrEmpty           = errors.New("receipt file is empty")
)

// BlobStore defines the receipt object store
type BlobStore interface {
	Save(ctx context.Context, blob *models.ReceiptBlob) error
	Get(ctx context.Context, bookingID string) (*models.ReceiptBlob, error)
	Delete(ctx context.Context, bookingID string) error
}

// Cache keeps receipts locally when they cannot be uploaded. Storage
// failures surface as models.ErrStorageUnavailable so callers can fall
// back to "no receipt".
type Cache struct {
	store    BlobStore
	registry *Registry
	maxBytes int64
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewCache creates a new Cache
func NewCache(store BlobStore, registry *Registry, maxBytes int64, clock clockwork.Clock, logger *slog.Logger) *Cache {
	return &Cache{
		store:    store,
		registry: registry,
		maxBytes: maxBytes,
		clock:    clock,
		logger:   logger,
	}
}

// MaxBytes is the largest accepted receipt.
func (c *Cache) MaxBytes() int64 {
	return c.maxBytes
}

// Check validates a receipt's size and type and returns the content type
// to store it under.
func (c *Cache) Check(content []byte, declared string) (string, error) {
	if len(content) == 0 {
		return "", ErrEmpty
	}
	if int64(len(content)) > c.maxBytes {
		return "", ErrTooLarge
	}
	return DetectContentType(content, declared)
}

// SaveReceipt stores content for bookingID, replacing any previous receipt.
func (c *Cache) SaveReceipt(ctx context.Context, bookingID string, content []byte, contentType, fileName string) error {
	if strings.TrimSpace(bookingID) == "" {
		return fmt.Errorf("%w: booking id is required", models.ErrBadRequest)
	}

	ct, err := c.Check(content, contentType)
	if err != nil {
		return err
	}

	blob := &models.ReceiptBlob{
		BookingID:   bookingID,
		Content:     content,
		ContentType: ct,
		FileName:    fileName,
		StoredAt:    c.clock.Now().UTC(),
	}
	if err := c.store.Save(ctx, blob); err != nil {
		c.logger.Warn("failed to cache receipt", slog.String("booking_id", bookingID), slog.Any("error", err))
		return unavailable(err)
	}

	c.logger.Info("receipt cached locally",
		slog.String("booking_id", bookingID),
		slog.String("content_type", ct),
		slog.Int("bytes", len(content)))
	return nil
}

// GetReceiptObjectURL returns a revocable preview URL for the stored
// receipt. It returns models.ErrNotFound when none is stored.
func (c *Cache) GetReceiptObjectURL(ctx context.Context, bookingID string) (*ObjectURL, error) {
	blob, err := c.store.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, unavailable(err)
	}

	return c.registry.Create(Blob{
		Content:     blob.Content,
		ContentType: blob.ContentType,
		FileName:    blob.FileName,
	}), nil
}

// DeleteReceipt removes the stored receipt. Deleting a missing receipt is
// not an error.
func (c *Cache) DeleteReceipt(ctx context.Context, bookingID string) error {
	err := c.store.Delete(ctx, bookingID)
	if err == nil || errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return unavailable(err)
}

// DetectContentType sniffs content and accepts only images and PDFs. The
// declared type is trusted only when sniffing is inconclusive.
func DetectContentType(content []byte, declared string) (string, error) {
	mtype := mimetype.Detect(content)
	ct := mtype.String()

	if mtype.Is("application/octet-stream") || mtype.Is("text/plain") {
		ct = strings.TrimSpace(declared)
	}
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	if strings.HasPrefix(ct, "image/") || ct == "application/pdf" {
		return ct, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrUnsupportedType, ct)
}

func unavailable(err error) error {
	if errors.Is(err, models.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
}

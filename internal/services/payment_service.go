package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/receipts"
	"github.com/BradenHooton/eventease/internal/reconcile"
	"github.com/BradenHooton/eventease/internal/repositories"
	pkglogger "github.com/BradenHooton/eventease/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// PaymentAPI defines the backend calls made on payment submission
type PaymentAPI interface {
	GetBooking(ctx context.Context, id string) (reconcile.Record, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	UploadReceipt(ctx context.Context, bookingID string, blob models.ReceiptBlob) (map[string]any, error)
}

// PaymentConfig controls receipt handling
type PaymentConfig struct {
	UploadEnabled bool
	Reference     string
}

// PaymentService records bank-transfer payments against bookings.
type PaymentService struct {
	api         PaymentAPI
	bookings    *BookingService
	drafts      *repositories.DraftRepository
	prefs       *repositories.PreferenceRepository
	cache       *receipts.Cache
	config      PaymentConfig
	clock       clockwork.Clock
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentAPI PaymentAPI, bookings *BookingService, drafts *repositories.DraftRepository, prefs *repositories.PreferenceRepository, cache *receipts.Cache, config PaymentConfig, clock clockwork.Clock, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *PaymentService {
	return &PaymentService{
		api:         paymentAPI,
		bookings:    bookings,
		drafts:      drafts,
		prefs:       prefs,
		cache:       cache,
		config:      config,
		clock:       clock,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// ReceiptFile is a receipt chosen by the user.
type ReceiptFile struct {
	Content     []byte
	ContentType string
	FileName    string
}

// PaymentInput is the payment form. BookingID may be empty to use the
// active booking.
type PaymentInput struct {
	BookingID string
	Amount    string
	Notes     string
	Receipt   *ReceiptFile
}

// PaymentResult describes where the receipt ended up.
type PaymentResult struct {
	Booking       models.Booking
	Uploaded      bool
	CachedLocally bool
	StatusSynced  bool
	Message       string
}

// Submit validates the payment, stores the receipt (backend first when
// enabled, the local cache otherwise) and moves the booking to
// pending_review.
func (s *PaymentService) Submit(ctx context.Context, input PaymentInput) (*PaymentResult, error) {
	id, err := s.bookings.ActiveBookingID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	receiptName := storedReceiptName(draft)
	if input.Receipt == nil && !receiptStored(draft) {
		return nil, ErrReceiptRequired
	}

	remoteID := reconcile.ID(draft)
	synced := !isLocalID(remoteID)
	result := &PaymentResult{}

	if input.Receipt != nil {
		contentType, err := s.cache.Check(input.Receipt.Content, input.Receipt.ContentType)
		if err != nil {
			return nil, err
		}
		receiptName = input.Receipt.FileName

		if s.config.UploadEnabled && synced {
			blob := models.ReceiptBlob{
				BookingID:   remoteID,
				Content:     input.Receipt.Content,
				ContentType: contentType,
				FileName:    input.Receipt.FileName,
			}
			if _, err := s.api.UploadReceipt(ctx, remoteID, blob); err != nil {
				s.logger.Warn("receipt upload failed, keeping it locally", slog.String("booking_id", remoteID), slog.Any("error", err))
			} else {
				result.Uploaded = true
			}
		}

		err = s.cache.SaveReceipt(ctx, id, input.Receipt.Content, contentType, input.Receipt.FileName)
		switch {
		case err == nil:
			result.CachedLocally = true
		case !result.Uploaded:
			return nil, fmt.Errorf("%w: %w", ErrReceiptNotStored, err)
		default:
			s.logger.Warn("receipt uploaded but not cached locally", slog.Any("error", err))
		}
	}

	now := s.clock.Now().UTC()
	amountPaid, _ := amount.Float64()
	draft["status"] = string(models.StatusPendingReview)
	draft["payment"] = map[string]any{
		"amountPaid":    amountPaid,
		"receiptStored": true,
		"receiptName":   receiptName,
		"notes":         strings.TrimSpace(input.Notes),
		"submittedAt":   now.Format(time.RFC3339Nano),
	}

	if err := s.drafts.Upsert(ctx, draft); err != nil {
		s.logger.Warn("failed to save payment on draft", slog.String("booking_id", id), slog.Any("error", err))
		if !synced {
			return nil, err
		}
	}
	if err := s.prefs.SetActiveBookingID(ctx, id); err != nil {
		s.logger.Warn("failed to remember active booking", slog.Any("error", err))
	}

	if synced {
		if err := s.api.UpdateBookingStatus(ctx, remoteID, models.StatusPendingReview); err != nil {
			s.logger.Warn("failed to update backend booking status", slog.String("booking_id", remoteID), slog.Any("error", err))
		} else {
			result.StatusSynced = true
		}
	}

	s.auditLogger.LogAccountAction(pkglogger.EventPaymentSubmitted, reconcile.OwnerID(draft), map[string]string{
		"booking_id": remoteID,
		"uploaded":   fmt.Sprint(result.Uploaded),
	})

	result.Booking = reconcile.Normalize(draft)
	result.Message = "Receipt submitted! Our admin team will confirm shortly."
	return result, nil
}

// PaymentQR is the bank-transfer QR for a booking.
type PaymentQR struct {
	Payload  string
	PNG      []byte
	Terminal string
}

// PaymentQR renders the transfer QR for bookingID and amount.
func (s *PaymentService) PaymentQR(bookingID string, amount decimal.Decimal) (*PaymentQR, error) {
	payload := fmt.Sprintf("%s|%s|RM %s", s.config.Reference, bookingID, amount.StringFixed(2))

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return &PaymentQR{
		Payload:  payload,
		PNG:      png,
		Terminal: qr.ToSmallString(false),
	}, nil
}

// PreviewReceipt returns a revocable URL for the locally stored receipt.
// An unavailable cache reads as no receipt.
func (s *PaymentService) PreviewReceipt(ctx context.Context, bookingID string) (*receipts.ObjectURL, error) {
	id, err := s.bookings.ActiveBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	url, err := s.cache.GetReceiptObjectURL(ctx, id)
	if errors.Is(err, models.ErrStorageUnavailable) {
		s.logger.Warn("receipt cache unavailable", slog.Any("error", err))
		return nil, models.ErrNotFound
	}
	return url, err
}

// loadDraft returns the local draft for id, seeding one from the backend
// when the booking was never stored locally.
func (s *PaymentService) loadDraft(ctx context.Context, id string) (reconcile.Record, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err == nil {
		return reconcile.Record(draft), nil
	}
	if isLocalID(id) {
		return nil, models.ErrNoActiveBooking
	}

	rec, err := s.api.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoActiveBooking
		}
		return nil, err
	}

	seeded := rec.Clone()
	seeded["id"] = id
	return seeded, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "RM"))
	if raw == "" {
		return decimal.Zero, ErrAmountRequired
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: Amount must be a number", models.ErrValidation)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: Amount must be greater than zero", models.ErrValidation)
	}
	return amount.Round(2), nil
}

func receiptStored(draft reconcile.Record) bool {
	payment, ok := draft["payment"].(map[string]any)
	if !ok {
		return false
	}
	stored, _ := payment["receiptStored"].(bool)
	return stored
}

func storedReceiptName(draft reconcile.Record) string {
	v := reconcile.ResolveField(draft, reconcile.FieldReceiptName)
	if !v.Present() {
		return ""
	}
	return v.String()
}

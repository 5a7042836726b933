package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/reconcile"
)

// receiptUploadPaths are tried in order; backends disagree on the route.
var receiptUploadPaths = []string{"upload-receipt", "receipt-upload", "receipt"}

// ListBookings returns the caller's bookings. The backend answers either a
// bare array or {bookings: [...]}.
func (c *Client) ListBookings(ctx context.Context) ([]reconcile.Record, error) {
	var raw json.RawMessage
	if err := c.call(ctx, c.authed, http.MethodGet, "/api/bookings", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[reconcile.Record](raw, "bookings")
}

// GetBooking fetches a single booking with its full details.
func (c *Client) GetBooking(ctx context.Context, id string) (reconcile.Record, error) {
	var out reconcile.Record
	if err := c.call(ctx, c.authed, http.MethodGet, bookingPath(id), nil, &out); err != nil {
		return nil, err
	}
	return unwrapBooking(out), nil
}

// CreateBooking submits a new booking in backend shape.
func (c *Client) CreateBooking(ctx context.Context, booking reconcile.Record) (reconcile.Record, error) {
	var out reconcile.Record
	if err := c.call(ctx, c.authed, http.MethodPost, "/api/bookings", booking, &out); err != nil {
		return nil, err
	}
	return unwrapBooking(out), nil
}

// UpdateBooking patches fields of an existing booking.
func (c *Client) UpdateBooking(ctx context.Context, id string, fields map[string]any) (reconcile.Record, error) {
	var out reconcile.Record
	if err := c.call(ctx, c.authed, http.MethodPatch, bookingPath(id), fields, &out); err != nil {
		return nil, err
	}
	return unwrapBooking(out), nil
}

// UpdateBookingStatus sets the payment status of a booking.
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	body := map[string]string{"paymentStatus": string(status)}
	return c.call(ctx, c.authed, http.MethodPatch, bookingPath(id)+"/status", body, nil)
}

// UploadReceipt posts the receipt file as multipart form data. Each known
// upload route is tried until one accepts; the last failure is returned.
func (c *Client) UploadReceipt(ctx context.Context, bookingID string, blob models.ReceiptBlob) (map[string]any, error) {
	body, contentType, err := receiptForm(bookingID, blob)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, suffix := range receiptUploadPaths {
		path := bookingPath(bookingID) + "/" + suffix
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")

		resp, err := c.send(c.authed, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if !resp.ok() {
			apiErr := newError(resp.status, resp.body)
			apiErr.Message = fmt.Sprintf("Upload failed at %s (status %d)", path, resp.status)
			lastErr = apiErr
			// the session is gone, other routes will not do better
			if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
				break
			}
			continue
		}

		var ack map[string]any
		if err := decode(resp.body, &ack); err != nil {
			return nil, err
		}
		return ack, nil
	}

	if lastErr == nil {
		lastErr = errors.New("failed to upload receipt")
	}
	return nil, lastErr
}

func receiptForm(bookingID string, blob models.ReceiptBlob) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="receipt"; filename=%q`, blob.FileName))
	header.Set("Content-Type", blob.ContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build receipt form: %w", err)
	}
	if _, err := part.Write(blob.Content); err != nil {
		return nil, "", fmt.Errorf("failed to build receipt form: %w", err)
	}
	if err := w.WriteField("bookingId", bookingID); err != nil {
		return nil, "", fmt.Errorf("failed to build receipt form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to build receipt form: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func bookingPath(id string) string {
	return "/api/bookings/" + url.PathEscape(id)
}

// unwrapBooking accepts both a bare booking and {booking: {...}}.
func unwrapBooking(rec reconcile.Record) reconcile.Record {
	if inner, ok := rec["booking"].(map[string]any); ok && reconcile.ID(rec) == "" {
		return reconcile.Record(inner)
	}
	return rec
}

// decodeList accepts a bare JSON array or an object holding the array
// under key. Anything else is an empty list.
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] == '[' {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	inner := bytes.TrimSpace(wrapper[key])
	if len(inner) == 0 || inner[0] != '[' {
		return []T{}, nil
	}

	var list []T
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return list, nil
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBookings_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []string
	}{
		{"bare array", `[{"_id":"b1"},{"_id":"b2"}]`, []string{"b1", "b2"}},
		{"wrapped", `{"bookings":[{"id":"b3"}]}`, []string{"b3"}},
		{"wrapped without list", `{"bookings":null}`, []string{}},
		{"unexpected object", `{"message":"ok"}`, []string{}},
		{"empty body", ``, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/bookings", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))

			list, err := client.ListBookings(context.Background())
			require.NoError(t, err)

			ids := []string{}
			for _, rec := range list {
				if id, ok := rec["_id"].(string); ok {
					ids = append(ids, id)
				} else {
					ids = append(ids, rec["id"].(string))
				}
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestGetBooking_UnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/b1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"booking": map[string]any{"_id": "b1", "numPeople": 10}})
	}))

	rec, err := client.GetBooking(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", rec["_id"])
	assert.Equal(t, float64(10), rec["numPeople"])
}

func TestUpdateBookingStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/bookings/b1/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"paymentStatus": "completed"}, body)
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	}))

	require.NoError(t, client.UpdateBookingStatus(context.Background(), "b1", models.StatusCompleted))
}

func TestUpdateBookingStatus_ServerMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid status transition"})
	}))

	err := client.UpdateBookingStatus(context.Background(), "b1", models.StatusRejected)
	require.Error(t, err)
	assert.Equal(t, "Invalid status transition", err.Error())
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUploadReceipt_FallsBackAcrossRoutes(t *testing.T) {
	var (
		mu    sync.Mutex
		tried []string
	)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		tried = append(tried, r.URL.Path)
		mu.Unlock()

		if r.URL.Path != "/api/bookings/b1/receipt-upload" {
			http.NotFound(w, r)
			return
		}

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "b1", r.FormValue("bookingId"))

		file, header, err := r.FormFile("receipt")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "receipt.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)

		writeJSON(w, http.StatusOK, map[string]any{"receiptUrl": "https://cdn/receipt.png"})
	}))

	ack, err := client.UploadReceipt(context.Background(), "b1", models.ReceiptBlob{
		Content:     []byte("png-bytes"),
		ContentType: "image/png",
		FileName:    "receipt.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/receipt.png", ack["receiptUrl"])
	assert.Equal(t, []string{"/api/bookings/b1/upload-receipt", "/api/bookings/b1/receipt-upload"}, tried)
}

func TestUploadReceipt_AllRoutesFail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.UploadReceipt(context.Background(), "b1", models.ReceiptBlob{Content: []byte("x"), ContentType: "application/pdf", FileName: "r.pdf"})
	require.Error(t, err)
	assert.Equal(t, "Upload failed at /api/bookings/b1/receipt (status 500)", err.Error())
}

func TestUploadReceipt_StopsOnAuthFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.UploadReceipt(context.Background(), "b1", models.ReceiptBlob{Content: []byte("x"), ContentType: "application/pdf", FileName: "r.pdf"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAdminLists(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/users":
			_, _ = w.Write([]byte(`{"users":[{"_id":"u1","name":"Amy","email":"amy@example.com"},{"id":"u2","name":"Ben"}]}`))
		case "/api/admin/bookings":
			_, _ = w.Write([]byte(`[{"_id":"b1"}]`))
		default:
			http.NotFound(w, r)
		}
	}))

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "u2", users[1].ID)

	bookings, err := client.ListAllBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
}

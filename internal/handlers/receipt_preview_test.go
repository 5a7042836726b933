package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/eventease/internal/receipts"
	pkghttp "github.com/BradenHooton/eventease/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)

func newPreviewRouter(registry BlobResolver) http.Handler {
	h := NewReceiptPreviewHandler(registry, slog.New(slog.NewTextHandler(io.Discard, nil)), "development")
	r := chi.NewRouter()
	r.Get("/blob/{token}", h.ServeBlob)
	r.Head("/blob/{token}", h.ServeBlob)
	return r
}

func TestReceiptPreviewHandler_ServesLiveBlob(t *testing.T) {
	clock := clockwork.NewFakeClock()
	registry := receipts.NewRegistry(clock, time.Minute)
	url := registry.Create(receipts.Blob{Content: pngBytes, ContentType: "image/png", FileName: `slip "1".png`})

	req := httptest.NewRequest(http.MethodGet, "/blob/"+url.Token, nil)
	w := httptest.NewRecorder()
	newPreviewRouter(registry).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, `inline; filename="slip 1.png"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, pngBytes, w.Body.Bytes())
}

func TestReceiptPreviewHandler_Head(t *testing.T) {
	registry := receipts.NewRegistry(clockwork.NewFakeClock(), time.Minute)
	url := registry.Create(receipts.Blob{Content: pngBytes, ContentType: "image/png"})

	req := httptest.NewRequest(http.MethodHead, "/blob/"+url.Token, nil)
	w := httptest.NewRecorder()
	newPreviewRouter(registry).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestReceiptPreviewHandler_NotFound(t *testing.T) {
	clock := clockwork.NewFakeClock()
	registry := receipts.NewRegistry(clock, time.Minute)
	released := registry.Create(receipts.Blob{Content: pngBytes, ContentType: "image/png"})
	released.Release()
	expired := registry.Create(receipts.Blob{Content: pngBytes, ContentType: "image/png"})
	clock.Advance(time.Minute)

	for name, token := range map[string]string{
		"released": released.Token,
		"expired":  expired.Token,
		"unknown":  "does-not-exist",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/blob/"+token, nil)
			w := httptest.NewRecorder()
			newPreviewRouter(registry).ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
			var resp pkghttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "not_found", resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/BradenHooton/eventease/internal/receipts"
	pkghttp "github.com/BradenHooton/eventease/pkg/http"
	pkglogger "github.com/BradenHooton/eventease/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// BlobResolver looks up the content behind an object URL token
type BlobResolver interface {
	Resolve(token string) (receipts.Blob, bool)
}

// ReceiptPreviewHandler serves locally cached receipts by object URL
type ReceiptPreviewHandler struct {
	registry BlobResolver
	logger   *slog.Logger
	env      string
}

// NewReceiptPreviewHandler creates a new ReceiptPreviewHandler
func NewReceiptPreviewHandler(registry BlobResolver, logger *slog.Logger, env string) *ReceiptPreviewHandler {
	return &ReceiptPreviewHandler{
		registry: registry,
		logger:   logger,
		env:      env,
	}
}

// ServeBlob handles GET /blob/{token}
func (h *ReceiptPreviewHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	blob, ok := h.registry.Resolve(token)
	if !ok {
		h.logger.Info("receipt preview not found", pkglogger.RedactedAttr("token", token, h.env))
		pkghttp.WriteNotFound(w, "Receipt preview has expired or was released")
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Content)))
	w.Header().Set("Cache-Control", "no-store")
	if name := safeFileName(blob.FileName); name != "" {
		w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	}
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(blob.Content); err != nil {
		h.logger.Warn("failed to write receipt preview", slog.Any("error", err))
	}
}

// safeFileName drops characters that would break the header value.
func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
}

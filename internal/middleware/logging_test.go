package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestSecureLogger_LogsRoutePatternNotToken(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(SecureLogger(logger))
	r.Get("/blob/{token}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/blob/secret-token-123?next=%2Fpayment", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if strings.Contains(buf.String(), "secret-token-123") {
		t.Fatalf("token leaked into log: %s", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["path"] != "/blob/{token}?[REDACTED]" {
		t.Errorf("path: got %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("status: got %v", entry["status"])
	}
}

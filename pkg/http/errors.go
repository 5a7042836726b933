package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrorResponse represents a standard API error response. Backends vary in
// which of these they fill.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`   // Machine-readable error code, or a message
	Code    string `json:"code,omitempty"`    // Machine-readable error code
	Message string `json:"message,omitempty"` // Human-readable message
	Details string `json:"details,omitempty"` // Optional additional context
}

// ParseErrorBody decodes an error body. Non-JSON bodies come back as the
// message when they are short plain text.
func ParseErrorBody(body []byte) ErrorResponse {
	var resp ErrorResponse
	err := json.Unmarshal(body, &resp)
	var typeErr *json.UnmarshalTypeError
	if err == nil || errors.As(err, &typeErr) {
		return resp
	}

	text := strings.TrimSpace(string(body))
	if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return ErrorResponse{Message: text}
	}
	return ErrorResponse{}
}

// UserMessage is the human-readable message the server sent, or fallback.
func (e ErrorResponse) UserMessage(fallback string) string {
	if m := strings.TrimSpace(e.Message); m != "" {
		return m
	}
	if m := strings.TrimSpace(e.Error); m != "" && strings.Contains(m, " ") {
		return m
	}
	return fallback
}

// MachineCode returns the machine-readable code, if any.
func (e ErrorResponse) MachineCode() string {
	if e.Code != "" {
		return e.Code
	}
	if e.Error != "" && !strings.Contains(e.Error, " ") {
		return e.Error
	}
	return ""
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   errorCode,
		Message: message,
	}

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

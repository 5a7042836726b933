package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/eventease/internal/governor"
	"github.com/BradenHooton/eventease/internal/models"
	pkghttp "github.com/BradenHooton/eventease/pkg/http"
)

// Error is a non-2xx backend response.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func newError(status int, body []byte) *Error {
	parsed := pkghttp.ParseErrorBody(body)
	return &Error{
		StatusCode: status,
		Code:       parsed.MachineCode(),
		Message:    parsed.UserMessage(fallbackMessage(status)),
	}
}

func (e *Error) Error() string {
	return e.Message
}

// Is maps the status code onto the shared sentinel errors.
func (e *Error) Is(target error) bool {
	switch target {
	case models.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case models.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case models.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case models.ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

func fallbackMessage(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "The requested resource was not found."
	case status == http.StatusTooManyRequests:
		return "Too many requests, please wait and try again."
	case status >= 500:
		return fmt.Sprintf("The server could not process the request (status %d).", status)
	default:
		return fmt.Sprintf("Request failed (status %d).", status)
	}
}

func networkError(err error) error {
	return fmt.Errorf("%w: %v", models.ErrNetwork, err)
}

// LoginError is a rejected login or MFA verification together with the
// lockout state the backend reported.
type LoginError struct {
	Response *Error

	RemainingAttempts      *int
	RetryAfter             *int
	IsTemporarilyLocked    bool
	LockUntil              *time.Time
	IsPermanentlyLocked    bool
	IsActiveSessionBlocked bool
	IsIPBlocked            bool
	BlockedUntil           *time.Time
}

func (e *LoginError) Error() string {
	return e.Response.Error()
}

func (e *LoginError) Unwrap() error {
	return e.Response
}

// ActiveSession reports whether the account is logged in elsewhere.
func (e *LoginError) ActiveSession() bool {
	if e.IsActiveSessionBlocked || e.Response.Code == "SESSION_ACTIVE" {
		return true
	}
	msg := strings.ToLower(e.Response.Message)
	return strings.Contains(msg, "already logged in") || strings.Contains(msg, "active session")
}

// Signal converts the reported lockout state for the attempt governor.
func (e *LoginError) Signal() governor.ServerSignal {
	sig := governor.ServerSignal{
		RetryAfterSeconds: e.RetryAfter,
		RemainingAttempts: e.RemainingAttempts,
		PermanentlyLocked: e.IsPermanentlyLocked,
	}
	if e.IsTemporarilyLocked || e.LockUntil != nil {
		sig.LockUntil = e.LockUntil
	}
	if e.IsIPBlocked || e.BlockedUntil != nil {
		sig.IPBlockedUntil = e.BlockedUntil
	}
	return sig
}

// loginErrorBody is the lockout part of a login error body.
type loginErrorBody struct {
	RemainingAttempts      *flexNumber `json:"remainingAttempts"`
	RetryAfter             *flexNumber `json:"retryAfter"`
	IsTemporarilyLocked    bool        `json:"isTemporarilyLocked"`
	LockUntil              *flexTime   `json:"lockUntil"`
	IsPermanentlyLocked    bool        `json:"isPermanentlyLocked"`
	IsActiveSessionBlocked bool        `json:"isActiveSessionBlocked"`
	IsIPBlocked            bool        `json:"isIpBlocked"`
	BlockedUntil           *flexTime   `json:"blockedUntil"`
}

func newLoginError(resp *response) *LoginError {
	le := &LoginError{Response: newError(resp.status, resp.body)}

	var body loginErrorBody
	if err := json.Unmarshal(resp.body, &body); err == nil {
		le.RemainingAttempts = body.RemainingAttempts.intPtr()
		le.RetryAfter = body.RetryAfter.intPtr()
		le.IsTemporarilyLocked = body.IsTemporarilyLocked
		le.LockUntil = body.LockUntil.timePtr()
		le.IsPermanentlyLocked = body.IsPermanentlyLocked
		le.IsActiveSessionBlocked = body.IsActiveSessionBlocked
		le.IsIPBlocked = body.IsIPBlocked
		le.BlockedUntil = body.BlockedUntil.timePtr()
	}

	if le.RetryAfter == nil && resp.status == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.header.Get("Retry-After")); err == nil && secs >= 0 {
			le.RetryAfter = &secs
		}
	}

	return le
}

// flexNumber accepts a JSON number or a numeric string.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*n = flexNumber(f)
	return nil
}

func (n *flexNumber) intPtr() *int {
	if n == nil {
		return nil
	}
	i := int(*n)
	return &i
}

// flexTime accepts an RFC 3339 string or Unix milliseconds.
type flexTime struct {
	t     time.Time
	valid bool
}

func (ft *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		t, err := time.Parse(time.RFC3339Nano, strings.Trim(s, `"`))
		if err != nil {
			return nil
		}
		ft.t, ft.valid = t, true
		return nil
	}

	ms, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	ft.t, ft.valid = time.UnixMilli(int64(ms)).UTC(), true
	return nil
}

func (ft *flexTime) timePtr() *time.Time {
	if ft == nil || !ft.valid {
		return nil
	}
	t := ft.t
	return &t
}

// IsLoginError unwraps err into a *LoginError.
func IsLoginError(err error) (*LoginError, bool) {
	var le *LoginError
	ok := errors.As(err, &le)
	return le, ok
}

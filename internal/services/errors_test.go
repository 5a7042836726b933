package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/BradenHooton/eventease/internal/api"
	"github.com/BradenHooton/eventease/internal/governor"
	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/receipts"
	"github.com/stretchr/testify/assert"
)

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Minute, "5:00"},
		{90 * time.Second, "1:30"},
		{1500 * time.Millisecond, "0:02"},
		{0, "0:00"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCountdown(tt.in), tt.in.String())
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"backend message", &api.Error{StatusCode: http.StatusBadRequest, Message: "Email already registered"}, "Email already registered"},
		{"wrapped backend message", fmt.Errorf("register: %w", &api.Error{StatusCode: http.StatusConflict, Message: "Taken"}), "Taken"},
		{"permanent lockout", &BlockedError{Reason: governor.ReasonPermanentLockout}, "Account locked after too many failed attempts. Reset your password to continue."},
		{"ip block", &BlockedError{Reason: governor.ReasonIPBlocked, Remaining: 61 * time.Second}, "Too many attempts from this network. Try again in 1:01."},
		{"backoff", &BlockedError{Reason: governor.ReasonBackoff, Remaining: 2 * time.Second}, "Please wait 0:02 before trying again."},
		{"active session default", &sessionConflictError{cause: &api.LoginError{Response: &api.Error{StatusCode: http.StatusConflict}, IsActiveSessionBlocked: true}}, "This account is already logged in on another device or browser. Please logout from the other device first."},
		{"network", fmt.Errorf("list: %w", models.ErrNetwork), "Connection error. Please try again."},
		{"validation", fmt.Errorf("%w: Amount must be a number", models.ErrValidation), "Amount must be a number."},
		{"side limit", fmt.Errorf("%w: x allows 1", menu.ErrSideLimitReached), "Side dish limit reached for the chosen main dish: x allows 1."},
		{"receipt too large", receipts.ErrTooLarge, "Receipt must be 20MB or less."},
		{"endpoint missing", ErrResetEndpointMissing, "Reset endpoint unavailable. Please verify the backend is running."},
		{"unauthorized", models.ErrUnauthorized, "Please login to continue."},
		{"forbidden", models.ErrForbidden, "You do not have permission to do that."},
		{"unknown", errors.New("kaboom"), "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestBlockedError_Unwraps(t *testing.T) {
	cause := &api.LoginError{Response: &api.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}}
	err := newBlockedError(governor.Status{Reason: governor.ReasonTemporaryLockout, Remaining: time.Minute}, testNow, cause)

	assert.ErrorIs(t, err, models.ErrLoginBlocked)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	if assert.NotNil(t, err.Until) {
		assert.Equal(t, testNow.Add(time.Minute), *err.Until)
	}
}

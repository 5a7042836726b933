package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/eventease/internal/api"
	"github.com/BradenHooton/eventease/internal/governor"
	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/receipts"
	pkgauth "github.com/BradenHooton/eventease/pkg/auth"
)

// User-facing failures that carry their own wording.
var (
	ErrForgotEndpointMissing = errors.New("Password reset endpoint is unavailable. Please verify the backend route or contact support.")
	ErrResetEndpointMissing  = errors.New("Reset endpoint unavailable. Please verify the backend is running.")
	ErrBookingsUnavailable   = errors.New("Failed to fetch bookings from backend.")
	ErrReceiptRequired       = errors.New("Attach your transfer receipt (max 20MB).")
	ErrAmountRequired        = errors.New("Please enter the amount you transferred.")
	ErrReceiptNotStored      = errors.New("Failed to store receipt locally. Please try again.")
)

const (
	msgGeneric = "Something went wrong. Please try again."
	msgNetwork = "Connection error. Please try again."
)

// BlockedError is returned when the attempt governor refuses a login, or
// when a rejected login leaves it in a blocking state.
type BlockedError struct {
	Reason    governor.Reason
	State     governor.LockState
	Remaining time.Duration
	Until     *time.Time

	// Cause is the backend rejection that led here, if any.
	Cause error
}

func newBlockedError(st governor.Status, now time.Time, cause error) *BlockedError {
	e := &BlockedError{
		Reason:    st.Reason,
		State:     st.State,
		Remaining: st.Remaining,
		Cause:     cause,
	}
	if st.Remaining > 0 {
		until := now.Add(st.Remaining)
		e.Until = &until
	}
	return e
}

func (e *BlockedError) Error() string {
	switch e.Reason {
	case governor.ReasonPermanentLockout:
		return "Account locked after too many failed attempts. Reset your password to continue."
	case governor.ReasonTemporaryLockout:
		return fmt.Sprintf("Too many failed attempts. Try again in %s.", FormatCountdown(e.Remaining))
	case governor.ReasonIPBlocked:
		return fmt.Sprintf("Too many attempts from this network. Try again in %s.", FormatCountdown(e.Remaining))
	case governor.ReasonBackoff:
		return fmt.Sprintf("Please wait %s before trying again.", FormatCountdown(e.Remaining))
	}
	return models.ErrLoginBlocked.Error()
}

func (e *BlockedError) Is(target error) bool {
	return target == models.ErrLoginBlocked
}

func (e *BlockedError) Unwrap() error {
	return e.Cause
}

// FormatCountdown renders a remaining duration as m:ss.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// sessionConflictError is an active-session rejection. It keeps the
// backend's wording.
type sessionConflictError struct {
	cause *api.LoginError
}

func (e *sessionConflictError) Error() string {
	return e.cause.Error()
}

func (e *sessionConflictError) Is(target error) bool {
	return target == models.ErrActiveSession
}

func (e *sessionConflictError) Unwrap() error {
	return e.cause
}

// UserMessage maps any error from this package to the text shown to the
// user: backend messages verbatim, otherwise a fixed fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return blocked.Error()
	}

	if errors.Is(err, models.ErrActiveSession) {
		var le *api.LoginError
		if errors.As(err, &le) && strings.TrimSpace(le.Error()) != "" {
			return le.Error()
		}
		return "This account is already logged in on another device or browser. Please logout from the other device first."
	}

	var pwErr *pkgauth.PasswordValidationError
	if errors.As(err, &pwErr) {
		return pwErr.Error()
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	for _, known := range []error{
		ErrForgotEndpointMissing,
		ErrResetEndpointMissing,
		ErrBookingsUnavailable,
		ErrReceiptRequired,
		ErrAmountRequired,
		ErrReceiptNotStored,
		receipts.ErrTooLarge,
		receipts.ErrUnsupportedType,
		receipts.ErrEmpty,
	} {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}

	switch {
	case errors.Is(err, models.ErrNetwork):
		return msgNetwork
	case errors.Is(err, models.ErrValidation):
		return sentence(strings.TrimPrefix(err.Error(), models.ErrValidation.Error()+": "))
	case errors.Is(err, menu.ErrSideLimitReached),
		errors.Is(err, menu.ErrUnknownItem):
		return sentence(err.Error())
	case errors.Is(err, models.ErrSessionExpired),
		errors.Is(err, models.ErrMFAPending),
		errors.Is(err, models.ErrNoActiveBooking),
		errors.Is(err, models.ErrStorageUnavailable):
		return sentence(err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		return "Please login to continue."
	case errors.Is(err, models.ErrForbidden):
		return "You do not have permission to do that."
	case errors.Is(err, models.ErrNotFound):
		return "Not found."
	}

	return msgGeneric
}

// sentence capitalises msg and ends it with a full stop.
func sentence(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return msgGeneric
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

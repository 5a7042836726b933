package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation failed")

	// Transport and local storage
	ErrNetwork            = errors.New("connection error, please try again")
	ErrStorageUnavailable = errors.New("local storage is unavailable")

	// Login gating
	ErrLoginBlocked    = errors.New("login attempts are currently blocked")
	ErrActiveSession   = errors.New("account is already logged in on another device or browser")
	ErrMFAPending      = errors.New("no pending MFA verification, please login again")
	ErrSessionExpired  = errors.New("session expired, please login again")
	ErrNoActiveBooking = errors.New("no booking selected, please create a booking first")
)

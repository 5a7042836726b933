package auth

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	MinPasswordLen = 6
	MaxPasswordLen = 128
)

// Messages shown for rejected passwords
const (
	MsgPasswordRequired = "Password is required."
	MsgPasswordStrength = "Password must be 6+ chars, include uppercase, lowercase, number, and special char."
	MsgPasswordTooShort = "Password must be at least 6 characters long."
	MsgPasswordMismatch = "Passwords do not match."
	MsgPasswordCommon   = "Password is too common, please choose a more unique password."
)

// PasswordValidationError lists every unmet requirement. Error returns the
// single message shown to the user.
type PasswordValidationError struct {
	Message string
	Errors  []string
}

func (e *PasswordValidationError) Error() string {
	if e.Message == "" {
		return "invalid password"
	}
	return e.Message
}

// Common weak passwords to reject
var commonPasswords = map[string]bool{
	"password1!":   true,
	"password123!": true,
	"passw0rd!":    true,
	"p@ssw0rd":     true,
	"p@ssword1":    true,
	"qwerty1!":     true,
	"qwerty123!":   true,
	"welcome1!":    true,
	"admin123!":    true,
	"letmein1!":    true,
}

// ValidatePassword enforces the registration strength rule: at least six
// characters with an upper-case letter, a lower-case letter, a digit and a
// special character.
func ValidatePassword(password string) error {
	if password == "" {
		return &PasswordValidationError{Message: MsgPasswordRequired, Errors: []string{"is required"}}
	}

	errors := make([]string, 0)

	if len([]rune(password)) < MinPasswordLen {
		errors = append(errors, fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	}
	if len(password) > MaxPasswordLen {
		errors = append(errors, fmt.Sprintf("must be at most %d characters", MaxPasswordLen))
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSpecial := false

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		errors = append(errors, "must contain at least one uppercase letter")
	}
	if !hasLower {
		errors = append(errors, "must contain at least one lowercase letter")
	}
	if !hasDigit {
		errors = append(errors, "must contain at least one digit")
	}
	if !hasSpecial {
		errors = append(errors, "must contain at least one special character")
	}

	if len(errors) > 0 {
		return &PasswordValidationError{Message: MsgPasswordStrength, Errors: errors}
	}

	if commonPasswords[strings.ToLower(password)] {
		return &PasswordValidationError{Message: MsgPasswordCommon, Errors: []string{"is too common"}}
	}

	return nil
}

// ValidateNewPassword checks a password reset: both fields filled, the
// minimum length, and matching confirmation.
func ValidateNewPassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return &PasswordValidationError{Message: "Please fill in both password fields", Errors: []string{"is required"}}
	}
	if len([]rune(password)) < MinPasswordLen {
		return &PasswordValidationError{Message: MsgPasswordTooShort, Errors: []string{"is too short"}}
	}
	if password != confirm {
		return &PasswordValidationError{Message: MsgPasswordMismatch, Errors: []string{"does not match"}}
	}
	return nil
}

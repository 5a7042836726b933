package models

import "time"

// Roles issued by the backend
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims is the decoded, normalised view of a bearer token.
// UserID and Email are lower-cased and trimmed.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt *time.Time
}

// Session is the logged-in identity of the current client.
type Session struct {
	Token  string
	Claims Claims
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Claims.Role == RoleAdmin
}

// PendingMFA is persisted between the login response and the MFA step.
type PendingMFA struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

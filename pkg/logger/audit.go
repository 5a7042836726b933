package logger

import (
	"context"
	"log/slog"
	"time"
)

// Auth event types recorded by the client.
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailed      = "login_failed"
	EventLoginBlocked     = "login_blocked"
	EventLockoutTemporary = "lockout_temporary"
	EventLockoutPermanent = "lockout_permanent"
	EventMFAVerified      = "mfa_verified"
	EventPasswordReset    = "password_reset"
	EventLogout           = "logout"
	EventSessionRejected  = "session_rejected"
	EventBookingDecision  = "booking_decision"
	EventPaymentSubmitted = "payment_submitted"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Email         string
	UserID        string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAuthAttempt logs authentication attempts. Emails are masked.
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{slog.Bool("success", event.Success)}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	attrs = appendMetadata(attrs, event.Metadata)

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.emit(level, "auth", event.EventType, attrs)
}

// LogLockout logs a lockout transition. until is nil for a permanent lockout.
func (al *AuditLogger) LogLockout(eventType string, failedAttempts int, until *time.Time) {
	attrs := []slog.Attr{slog.Int("failed_attempts", failedAttempts)}
	if until != nil {
		attrs = append(attrs, slog.String("locked_until", until.UTC().Format(time.RFC3339)))
	}
	al.emit(slog.LevelWarn, "lockout", eventType, attrs)
}

// LogAccountAction logs general account actions
func (al *AuditLogger) LogAccountAction(eventType, userID string, metadata map[string]string) {
	var attrs []slog.Attr
	if userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	al.emit(slog.LevelInfo, "account", eventType, appendMetadata(attrs, metadata))
}

func (al *AuditLogger) emit(level slog.Level, auditType, eventType string, attrs []slog.Attr) {
	head := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", eventType),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	al.logger.LogAttrs(context.Background(), level, "audit", append(head, attrs...)...)
}

func appendMetadata(attrs []slog.Attr, metadata map[string]string) []slog.Attr {
	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}
	return attrs
}

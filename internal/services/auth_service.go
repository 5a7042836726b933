package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/eventease/internal/api"
	"github.com/BradenHooton/eventease/internal/governor"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/repositories"
	"github.com/BradenHooton/eventease/internal/session"
	"github.com/BradenHooton/eventease/internal/validation"
	pkgauth "github.com/BradenHooton/eventease/pkg/auth"
	pkglogger "github.com/BradenHooton/eventease/pkg/logger"
)

// AuthAPI defines the backend auth calls
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResult, error)
	VerifyMFA(ctx context.Context, req api.VerifyMFARequest) (*api.LoginResult, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error)
	ForgotPassword(ctx context.Context, email string) (*api.MessageResponse, error)
	ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error)
	VerifyEmail(ctx context.Context, token string) (*api.MessageResponse, error)
	Logout(ctx context.Context) error
}

// AuthService handles login, MFA, registration and password recovery
type AuthService struct {
	api         AuthAPI
	tokens      *session.TokenStore
	governor    *governor.Governor
	prefs       *repositories.PreferenceRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(authAPI AuthAPI, tokens *session.TokenStore, gov *governor.Governor, prefs *repositories.PreferenceRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		api:         authAPI,
		tokens:      tokens,
		governor:    gov,
		prefs:       prefs,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginInput is the login form
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterInput is the sign-up form
type RegisterInput struct {
	Name            string `validate:"required,max=100"`
	Phone           string `validate:"required,numeric,min=7,max=15"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// LoginOutcome is either a session or a pending MFA step.
type LoginOutcome struct {
	Session     *models.Session
	MFARequired bool
	UserID      string
}

// Login checks the attempt governor, submits the credentials and records
// the outcome. A refused attempt never reaches the backend.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutcome, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if st := s.governor.Status(ctx); !st.Allowed {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventLoginBlocked,
			Email:         input.Email,
			FailureReason: string(st.Reason),
			Success:       false,
		})
		return nil, newBlockedError(st, s.governor.Clock().Now(), nil)
	}

	res, err := s.api.Login(ctx, api.LoginRequest{Email: input.Email, Password: input.Password})
	if err != nil {
		return nil, s.loginFailed(ctx, input.Email, err)
	}

	// Credentials were accepted either way.
	s.governor.RecordSuccess(ctx)

	if res.MFARequired {
		pending := models.PendingMFA{UserID: res.UserID, Email: strings.ToLower(input.Email)}
		if err := s.prefs.SetPendingMFA(ctx, pending); err != nil {
			s.logger.Warn("failed to persist pending mfa", slog.Any("error", err))
		}
		s.logger.Info("login requires mfa", slog.String("user_id", res.UserID))
		return &LoginOutcome{MFARequired: true, UserID: res.UserID}, nil
	}

	sess, err := s.startSession(ctx, res.Token)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventLoginSuccess,
		Email:     sess.Claims.Email,
		UserID:    sess.Claims.UserID,
		Success:   true,
	})
	return &LoginOutcome{Session: sess, UserID: sess.Claims.UserID}, nil
}

// VerifyMFA submits the six-digit code for the pending login.
func (s *AuthService) VerifyMFA(ctx context.Context, code string) (*models.Session, error) {
	code = strings.TrimSpace(code)
	if err := validation.Var("Code", code, "required,len=6,numeric"); err != nil {
		return nil, err
	}

	pending, err := s.prefs.PendingMFA(ctx)
	if err != nil {
		return nil, models.ErrMFAPending
	}

	res, err := s.api.VerifyMFA(ctx, api.VerifyMFARequest{UserID: pending.UserID, Code: code})
	if err != nil {
		var le *api.LoginError
		if errors.As(err, &le) {
			if le.ActiveSession() {
				s.auditActiveSession(pending.Email)
				return nil, &sessionConflictError{cause: le}
			}
			if sig := le.Signal(); !sig.IsZero() {
				st := s.governor.ApplyServerSignal(ctx, sig)
				if !st.Allowed {
					return nil, newBlockedError(st, s.governor.Clock().Now(), le)
				}
			}
		}
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventMFAVerified,
			Email:         pending.Email,
			UserID:        pending.UserID,
			FailureReason: "invalid_code",
			Success:       false,
		})
		return nil, err
	}

	sess, err := s.startSession(ctx, res.Token)
	if err != nil {
		return nil, err
	}
	if err := s.prefs.ClearPendingMFA(ctx); err != nil {
		s.logger.Warn("failed to clear pending mfa", slog.Any("error", err))
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventMFAVerified,
		Email:     sess.Claims.Email,
		UserID:    sess.Claims.UserID,
		Success:   true,
	})
	return sess, nil
}

// PendingMFA returns the identity waiting for a code, if any.
func (s *AuthService) PendingMFA(ctx context.Context) (*models.PendingMFA, error) {
	pending, err := s.prefs.PendingMFA(ctx)
	if err != nil {
		return nil, models.ErrMFAPending
	}
	return pending, nil
}

// Register validates the sign-up form and creates the account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)

	if err := validation.Struct(input); err != nil {
		return "", err
	}
	if err := pkgauth.ValidatePassword(input.Password); err != nil {
		return "", err
	}

	res, err := s.api.Register(ctx, api.RegisterRequest{
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		s.logger.Info("registration rejected", slog.Any("error", err))
		return "", err
	}

	return messageOr(res, "Registration successful! Please check your email to verify your account."), nil
}

// ForgotPassword requests a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validation.Var("Email", email, "required,email"); err != nil {
		return "", err
	}

	res, err := s.api.ForgotPassword(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%w", ErrForgotEndpointMissing)
		}
		return "", err
	}

	return messageOr(res, "If an account exists for that email, a reset link has been sent."), nil
}

// ResetPassword sets a new password and clears any local lockout.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: Missing reset token. Please request a new link", models.ErrValidation)
	}
	if err := pkgauth.ValidateNewPassword(password, confirm); err != nil {
		return "", err
	}

	res, err := s.api.ResetPassword(ctx, api.ResetPasswordRequest{
		Token:           token,
		NewPassword:     password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%w", ErrResetEndpointMissing)
		}
		return "", err
	}

	s.governor.Reset(ctx)
	return messageOr(res, "Password updated. Log in with your new password and complete MFA verification."), nil
}

// VerifyEmail confirms an account's address.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: Verification link is missing its token", models.ErrValidation)
	}

	res, err := s.api.VerifyEmail(ctx, token)
	if err != nil {
		return "", err
	}
	return messageOr(res, "Email verified. You can now log in."), nil
}

// Logout tells the backend when possible and always drops the local
// session.
func (s *AuthService) Logout(ctx context.Context) error {
	var userID string
	if sess, err := s.tokens.CurrentSession(ctx, s.governor.Clock().Now()); err == nil {
		userID = sess.Claims.UserID
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("backend logout failed", slog.Any("error", err))
		}
	}

	if err := s.prefs.ClearPendingMFA(ctx); err != nil {
		s.logger.Warn("failed to clear pending mfa", slog.Any("error", err))
	}
	if err := s.tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	s.auditLogger.LogAccountAction(pkglogger.EventLogout, userID, nil)
	return nil
}

// CurrentSession returns the logged-in session.
func (s *AuthService) CurrentSession(ctx context.Context) (*models.Session, error) {
	return s.tokens.CurrentSession(ctx, s.governor.Clock().Now())
}

// LoginStatus exposes the governor state for countdown display.
func (s *AuthService) LoginStatus(ctx context.Context) governor.Status {
	return s.governor.Status(ctx)
}

func (s *AuthService) startSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: login response had no token", models.ErrUnauthorized)
	}
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return s.tokens.CurrentSession(ctx, s.governor.Clock().Now())
}

// loginFailed feeds a rejected login to the governor. Transport failures
// and server faults are not counted.
func (s *AuthService) loginFailed(ctx context.Context, email string, err error) error {
	var le *api.LoginError
	if !errors.As(err, &le) {
		return err
	}

	if le.ActiveSession() {
		s.auditActiveSession(email)
		return &sessionConflictError{cause: le}
	}

	var st governor.Status
	switch status := le.Response.StatusCode; {
	case status == http.StatusTooManyRequests:
		st = s.governor.ApplyServerSignal(ctx, le.Signal())
	case status == http.StatusBadRequest, status == http.StatusUnauthorized,
		status == http.StatusForbidden, status == http.StatusUnprocessableEntity:
		st = s.governor.RecordFailure(ctx, le.Signal())
	default:
		return err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     pkglogger.EventLoginFailed,
		Email:         email,
		FailureReason: failureReason(le),
		Success:       false,
	})

	// a short backoff still shows the backend's own message
	if !st.Allowed && st.Reason != governor.ReasonBackoff {
		return newBlockedError(st, s.governor.Clock().Now(), le)
	}
	return le
}

func (s *AuthService) auditActiveSession(email string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     pkglogger.EventLoginFailed,
		Email:         email,
		FailureReason: "active_session",
		Success:       false,
	})
}

func failureReason(le *api.LoginError) string {
	switch {
	case le.IsPermanentlyLocked:
		return "permanently_locked"
	case le.IsTemporarilyLocked:
		return "temporarily_locked"
	case le.IsIPBlocked:
		return "ip_blocked"
	}
	return "invalid_credentials"
}

func messageOr(res *api.MessageResponse, fallback string) string {
	if res != nil && strings.TrimSpace(res.Message) != "" {
		return res.Message
	}
	return fallback
}

package api

import (
	"context"
	"net/http"
	"net/url"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful login. Exactly one of Token and
// MFARequired is set.
type LoginResult struct {
	Token       string `json:"token"`
	MFARequired bool   `json:"mfaRequired"`
	UserID      string `json:"userId"`
	Message     string `json:"message"`
}

// VerifyMFARequest is the body of POST /api/auth/verify-mfa
type VerifyMFARequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// MessageResponse is the generic {message} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Login submits credentials. A rejection is returned as *LoginError.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var out LoginResult
	if err := c.loginCall(ctx, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFA completes a login that answered mfaRequired. A rejection is
// returned as *LoginError.
func (c *Client) VerifyMFA(ctx context.Context, req VerifyMFARequest) (*LoginResult, error) {
	var out LoginResult
	if err := c.loginCall(ctx, "/api/auth/verify-mfa", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, c.public, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset link for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	body := map[string]string{"email": email}
	if err := c.call(ctx, c.public, http.MethodPost, "/api/auth/forgot-password", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, c.public, http.MethodPost, "/api/auth/reset-password", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail confirms an address with the token from the verification mail.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	var out MessageResponse
	path := "/api/auth/verify-email?token=" + url.QueryEscape(token)
	if err := c.call(ctx, c.public, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, c.authed, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) loginCall(ctx context.Context, path string, in, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, in)
	if err != nil {
		return err
	}

	resp, err := c.send(c.public, req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return newLoginError(resp)
	}

	return decode(resp.body, out)
}

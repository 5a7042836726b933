package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Navigator is the application's location. The CLI implements it by
// remembering where to resume and telling the user to login again.
type Navigator interface {
	CurrentPath() string
	Redirect(ctx context.Context, location string)
}

// Doer is the subset of *http.Client used by Fetcher.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher performs authenticated backend calls. A 401 or 403 response
// clears the token and sends the navigator to the login screen.
type Fetcher struct {
	client    Doer
	tokens    *TokenStore
	navigator Navigator
	logger    *slog.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(client Doer, tokens *TokenStore, navigator Navigator, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:    client,
		tokens:    tokens,
		navigator: navigator,
		logger:    logger,
	}
}

// Do attaches the bearer token when one is stored and performs req once.
// The response is returned unchanged so callers can still read the body.
func (f *Fetcher) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if token, ok := f.tokens.GetToken(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		f.handleAuthFailure(ctx, resp.StatusCode)
	}

	return resp, nil
}

func (f *Fetcher) handleAuthFailure(ctx context.Context, status int) {
	if err := f.tokens.ClearToken(ctx); err != nil {
		f.logger.Warn("failed to clear token after auth failure", slog.Any("error", err))
	}

	current := f.navigator.CurrentPath()
	if strings.Contains(current, "/login") {
		return
	}

	f.logger.Info("session rejected by backend, redirecting to login", slog.Int("status", status))
	f.navigator.Redirect(ctx, LoginLocation(current))
}

// LoginLocation builds the login path that resumes at next after re-auth.
func LoginLocation(next string) string {
	if next == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

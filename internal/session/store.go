package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/repositories"
)

// TokenStore persists the bearer token in local storage.
type TokenStore struct {
	storage repositories.LocalStorage
}

// NewTokenStore creates a new TokenStore
func NewTokenStore(storage repositories.LocalStorage) *TokenStore {
	return &TokenStore{storage: storage}
}

// SetToken persists the token as-is.
func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	return s.storage.SetItem(ctx, repositories.KeyToken, token)
}

// GetToken returns the persisted token; ok is false when none is stored or
// storage is unavailable.
func (s *TokenStore) GetToken(ctx context.Context) (token string, ok bool) {
	token, err := s.storage.GetItem(ctx, repositories.KeyToken)
	if err != nil || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// ClearToken removes the persisted token. A missing token is not an error.
func (s *TokenStore) ClearToken(ctx context.Context) error {
	err := s.storage.RemoveItem(ctx, repositories.KeyToken)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}

// CurrentSession returns the active session. An absent token yields
// ErrUnauthorized; an expired or undecodable one is cleared and yields
// ErrSessionExpired.
func (s *TokenStore) CurrentSession(ctx context.Context, now time.Time) (*models.Session, error) {
	token, ok := s.GetToken(ctx)
	if !ok {
		return nil, models.ErrUnauthorized
	}

	if IsTokenExpired(token, now) {
		_ = s.ClearToken(ctx)
		return nil, models.ErrSessionExpired
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		_ = s.ClearToken(ctx)
		return nil, models.ErrSessionExpired
	}

	return &models.Session{Token: token, Claims: claims}, nil
}

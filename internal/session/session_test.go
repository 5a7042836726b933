package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingNavigator captures redirects
type recordingNavigator struct {
	path      string
	redirects []string
}

func (n *recordingNavigator) CurrentPath() string { return n.path }

func (n *recordingNavigator) Redirect(ctx context.Context, location string) {
	n.redirects = append(n.redirects, location)
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"garbage fails closed", "not-a-jwt", true},
		{"empty fails closed", "", true},
		{"no exp never expires", signToken(t, jwt.MapClaims{"email": "a@b.com"}), false},
		{"future exp", signToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), false},
		{"past exp", signToken(t, jwt.MapClaims{"exp": now.Add(-time.Second).Unix()}), true},
		{"exp equal to now", signToken(t, jwt.MapClaims{"exp": now.Unix()}), true},
		{"malformed exp", signToken(t, jwt.MapClaims{"exp": "tomorrow"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTokenExpired(tt.token, now))
		})
	}
}

func TestDecodeClaims_Fallbacks(t *testing.T) {
	claims, err := DecodeClaims(signToken(t, jwt.MapClaims{
		"_id":   "  ABC123 ",
		"email": " Jane@Example.COM ",
		"role":  "admin",
		"exp":   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}))
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)

	claims, err = DecodeClaims(signToken(t, jwt.MapClaims{"userEmail": "solo@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, "solo@example.com", claims.UserID, "id falls back to email")
	assert.Nil(t, claims.ExpiresAt)

	_, err = DecodeClaims("nope")
	assert.Error(t, err)
}

func TestTokenStore_CurrentSession(t *testing.T) {
	storage := repositories.NewMemoryStorage()
	store := NewTokenStore(storage)
	ctx := context.Background()
	now := time.Now()

	_, err := store.CurrentSession(ctx, now)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	valid := signToken(t, jwt.MapClaims{"userId": "u1", "email": "u1@example.com", "exp": now.Add(time.Hour).Unix()})
	require.NoError(t, store.SetToken(ctx, valid))

	sess, err := store.CurrentSession(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.Claims.UserID)
	assert.False(t, sess.IsAdmin())

	expired := signToken(t, jwt.MapClaims{"userId": "u1", "exp": now.Add(-time.Hour).Unix()})
	require.NoError(t, store.SetToken(ctx, expired))

	_, err = store.CurrentSession(ctx, now)
	assert.ErrorIs(t, err, models.ErrSessionExpired)

	_, ok := store.GetToken(ctx)
	assert.False(t, ok, "expired token is cleared on detection")
}

func TestTokenStore_UnavailableStorageReadsAsLoggedOut(t *testing.T) {
	store := NewTokenStore(repositories.UnavailableStorage{})

	_, ok := store.GetToken(context.Background())
	assert.False(t, ok)
}

func TestFetcher_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := NewTokenStore(repositories.NewMemoryStorage())
	require.NoError(t, store.SetToken(context.Background(), "tok"))
	nav := &recordingNavigator{path: "/history"}
	fetcher := NewFetcher(server.Client(), store, nav, discardLogger())

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := fetcher.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Empty(t, nav.redirects)
}

func TestFetcher_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewTokenStore(repositories.NewMemoryStorage()), &recordingNavigator{}, discardLogger())

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := fetcher.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, gotAuth)
}

func TestFetcher_AuthFailureClearsTokenAndRedirects(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		store := NewTokenStore(repositories.NewMemoryStorage())
		require.NoError(t, store.SetToken(context.Background(), "tok"))
		nav := &recordingNavigator{path: "/booking-history?tab=all"}
		fetcher := NewFetcher(server.Client(), store, nav, discardLogger())

		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := fetcher.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, status, resp.StatusCode)
		_, ok := store.GetToken(context.Background())
		assert.False(t, ok)
		require.Len(t, nav.redirects, 1)
		assert.Equal(t, "/login?next=%2Fbooking-history%3Ftab%3Dall", nav.redirects[0])

		server.Close()
	}
}

func TestFetcher_NoRedirectLoopOnLoginScreen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := NewTokenStore(repositories.NewMemoryStorage())
	require.NoError(t, store.SetToken(context.Background(), "tok"))
	nav := &recordingNavigator{path: "/login"}
	fetcher := NewFetcher(server.Client(), store, nav, discardLogger())

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := fetcher.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, nav.redirects)
	_, ok := store.GetToken(context.Background())
	assert.False(t, ok, "token is still cleared")
}

func TestLoginLocation(t *testing.T) {
	assert.Equal(t, "/login", LoginLocation(""))
	assert.Equal(t, "/login?next=%2Fadmin", LoginLocation("/admin"))
}

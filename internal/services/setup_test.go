package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/eventease/internal/governor"
	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/receipts"
	"github.com/BradenHooton/eventease/internal/repositories"
	"github.com/BradenHooton/eventease/internal/session"
	pkglogger "github.com/BradenHooton/eventease/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// testEnv wires the services over in-memory storage and a mock backend.
type testEnv struct {
	ctx      context.Context
	clock    *clockwork.FakeClock
	storage  *repositories.MemoryStorage
	tokens   *session.TokenStore
	governor *governor.Governor
	prefs    *repositories.PreferenceRepository
	drafts   *repositories.DraftRepository
	registry *receipts.Registry
	cache    *receipts.Cache
	backend  *MockBackend
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := pkglogger.NewAuditLogger(log)
	clock := clockwork.NewFakeClockAt(testNow)
	storage := repositories.NewMemoryStorage()
	registry := receipts.NewRegistry(clock, 2*time.Minute)

	return &testEnv{
		ctx:      context.Background(),
		clock:    clock,
		storage:  storage,
		tokens:   session.NewTokenStore(storage),
		governor: governor.New(repositories.NewLoginAttemptRepository(storage), governor.DefaultPolicy(), clock, log, audit),
		prefs:    repositories.NewPreferenceRepository(storage),
		drafts:   repositories.NewDraftRepository(storage),
		registry: registry,
		cache:    receipts.NewCache(storage, registry, 20*1024*1024, clock, log),
		backend:  &MockBackend{},
		logger:   log,
		audit:    audit,
	}
}

func (e *testEnv) authService() *AuthService {
	return NewAuthService(e.backend, e.tokens, e.governor, e.prefs, e.logger, e.audit)
}

func (e *testEnv) bookingService() *BookingService {
	return NewBookingService(e.backend, e.tokens, e.drafts, e.prefs, menu.Default(), e.clock, e.logger)
}

func (e *testEnv) paymentService(uploads bool) *PaymentService {
	return NewPaymentService(e.backend, e.bookingService(), e.drafts, e.prefs, e.cache,
		PaymentConfig{UploadEnabled: uploads, Reference: "EventEase HQ"}, e.clock, e.logger, e.audit)
}

func (e *testEnv) adminService() *AdminService {
	return NewAdminService(e.backend, e.tokens, menu.Default(), 2, e.clock, e.logger, e.audit)
}

// token signs a bearer token valid for an hour from the fake clock.
func (e *testEnv) token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = e.clock.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// loginAs stores a token for the given identity.
func (e *testEnv) loginAs(t *testing.T, userID, email, role string) {
	t.Helper()
	token := e.token(t, jwt.MapClaims{"userId": userID, "email": email, "role": role})
	require.NoError(t, e.tokens.SetToken(e.ctx, token))
}

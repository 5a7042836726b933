package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/eventease/internal/api"
	"github.com/BradenHooton/eventease/internal/config"
	"github.com/BradenHooton/eventease/internal/database"
	"github.com/BradenHooton/eventease/internal/governor"
	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/receipts"
	"github.com/BradenHooton/eventease/internal/repositories"
	"github.com/BradenHooton/eventease/internal/services"
	"github.com/BradenHooton/eventease/internal/session"
	pkglogger "github.com/BradenHooton/eventease/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// app holds everything a command needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	in       *bufio.Reader
	stdin    io.Reader
	out      io.Writer
	nav      *cliNavigator
	prefs    *repositories.PreferenceRepository
	registry *receipts.Registry
	clock    clockwork.Clock

	auth     *services.AuthService
	bookings *services.BookingService
	payments *services.PaymentService
	admin    *services.AdminService

	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) *app {
	a := &app{
		cfg:    cfg,
		logger: logger,
		in:     bufio.NewReader(stdin),
		stdin:  stdin,
		out:    stdout,
	}

	local, blobs := a.openStorage(ctx)

	clock := clockwork.NewRealClock()
	a.clock = clock
	auditLogger := pkglogger.NewAuditLogger(logger)
	catalog := menu.Default()

	a.prefs = repositories.NewPreferenceRepository(local)
	a.nav = newNavigator(a.prefs, stdout, logger)
	tokens := session.NewTokenStore(local)
	drafts := repositories.NewDraftRepository(local)

	httpClient := &http.Client{Timeout: cfg.Client.HTTPTimeout}
	fetcher := session.NewFetcher(httpClient, tokens, a.nav, logger)
	client := api.NewClient(cfg.Client.APIBaseURL, httpClient, fetcher, logger)

	gov := governor.New(
		repositories.NewLoginAttemptRepository(local),
		governor.PolicyFromConfig(cfg.Login),
		clock,
		logger,
		auditLogger,
	)

	a.registry = receipts.NewRegistry(clock, cfg.Preview.URLTTL)
	cache := receipts.NewCache(blobs, a.registry, cfg.Receipts.MaxBytes, clock, logger)

	a.auth = services.NewAuthService(client, tokens, gov, a.prefs, logger, auditLogger)
	a.bookings = services.NewBookingService(client, tokens, drafts, a.prefs, catalog, clock, logger)
	a.payments = services.NewPaymentService(client, a.bookings, drafts, a.prefs, cache, services.PaymentConfig{
		UploadEnabled: cfg.Receipts.UploadEnabled,
		Reference:     cfg.Client.PaymentReference,
	}, clock, logger, auditLogger)
	a.admin = services.NewAdminService(client, tokens, catalog, cfg.Client.EnrichConcurrency, clock, logger, auditLogger)

	return a
}

// openStorage opens the configured engine. When it cannot be opened the
// client keeps working without persistence.
func (a *app) openStorage(ctx context.Context) (repositories.LocalStorage, receipts.BlobStore) {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		mem := repositories.NewMemoryStorage()
		return mem, mem

	case config.DriverPostgres:
		db, err := database.NewConnection(&a.cfg.Database, a.logger)
		if err != nil {
			a.logger.Warn("postgres storage unavailable", slog.Any("error", err))
			return repositories.UnavailableStorage{}, repositories.UnavailableStorage{}
		}
		if err := db.Migrate(ctx); err != nil {
			a.logger.Warn("postgres migrations failed", slog.Any("error", err))
			db.Close()
			return repositories.UnavailableStorage{}, repositories.UnavailableStorage{}
		}
		a.closers = append(a.closers, db.Close)
		return repositories.NewPostgresLocalStorage(db), repositories.NewPostgresReceiptRepository(db)

	default:
		db, err := database.OpenSQLite(ctx, a.cfg.Storage.SQLitePath, a.logger)
		if err != nil {
			a.logger.Warn("sqlite storage unavailable", slog.Any("error", err))
			return repositories.UnavailableStorage{}, repositories.UnavailableStorage{}
		}
		a.closers = append(a.closers, func() { db.Close() })
		return repositories.NewSQLiteLocalStorage(db), repositories.NewSQLiteReceiptRepository(db)
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BradenHooton/eventease/internal/background"
	"github.com/BradenHooton/eventease/internal/handlers"
	middlewareCustom "github.com/BradenHooton/eventease/internal/middleware"
	"github.com/BradenHooton/eventease/internal/routes"
)

// previewOpener registers a blob and returns its URL and release func.
type previewOpener func(ctx context.Context) (url string, release func(), err error)

// servePreview runs the loopback blob server until the URL expires or the
// user interrupts, then releases the URL and stops the server.
func (a *app) servePreview(ctx context.Context, open previewOpener) error {
	ln, err := net.Listen("tcp", a.cfg.Preview.Addr)
	if err != nil {
		return fmt.Errorf("failed to start preview server: %w", err)
	}
	a.registry.SetBaseURL("http://" + ln.Addr().String())

	handler := handlers.NewReceiptPreviewHandler(a.registry, a.logger, a.cfg.Client.Env)
	server := &http.Server{
		Handler: routes.NewRouter(handler, middlewareCustom.RateLimitConfig{
			RequestsPerMinute: a.cfg.Preview.RequestsPerMin,
		}, a.cfg.Client.Env, a.logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	defer cleanupCancel()
	cleanup := background.NewCleanupManager(a.registry, a.clock, a.logger, a.cfg.Preview.CleanupInterval)
	go cleanup.Start(cleanupCtx)
	defer cleanup.Stop()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Debug("preview server listening", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("preview server shutdown error", slog.Any("error", err))
		}
	}()

	url, release, err := open(ctx)
	if err != nil {
		return err
	}
	defer release()

	fmt.Fprintf(a.out, "Receipt preview: %s\n", url)
	fmt.Fprintf(a.out, "The link stops working in %s or when you press Ctrl+C.\n", a.cfg.Preview.URLTTL)

	select {
	case <-ctx.Done():
	case <-a.clock.After(a.cfg.Preview.URLTTL):
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("preview server stopped: %w", err)
		}
	}
	return nil
}

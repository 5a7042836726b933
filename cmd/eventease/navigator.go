package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/BradenHooton/eventease/internal/repositories"
)

// cliNavigator stands in for the browser location. Each command sets the
// path it represents; a redirect remembers that path so the next login can
// point the user back to it.
type cliNavigator struct {
	prefs  *repositories.PreferenceRepository
	out    io.Writer
	logger *slog.Logger

	mu         sync.Mutex
	path       string
	redirected string
}

func newNavigator(prefs *repositories.PreferenceRepository, out io.Writer, logger *slog.Logger) *cliNavigator {
	return &cliNavigator{prefs: prefs, out: out, logger: logger, path: "/"}
}

func (n *cliNavigator) Visit(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *cliNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// Redirect is called concurrently by enrichment fetches; only the first
// one prints.
func (n *cliNavigator) Redirect(ctx context.Context, location string) {
	n.mu.Lock()
	first := n.redirected == ""
	if first {
		n.redirected = location
	}
	current := n.path
	n.mu.Unlock()

	if !first {
		return
	}

	if err := n.prefs.SetLastPath(ctx, current); err != nil {
		n.logger.Warn("failed to remember last path", slog.Any("error", err))
	}
	fmt.Fprintf(n.out, "Your session has ended. Run `eventease login` to continue (%s).\n", location)
}

// Redirected returns the location of the last redirect, if any.
func (n *cliNavigator) Redirected() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirected
}

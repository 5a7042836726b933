package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BradenHooton/eventease/internal/config"
	"github.com/BradenHooton/eventease/internal/services"
)

const usage = `usage: eventease <command> [flags]

Commands:
  login          sign in (prompts for the password)
  mfa            finish a login with a 6-digit code
  logout         end the session
  register       create an account
  forgot         request a password reset email
  reset          set a new password from a reset token
  verify-email   confirm an email address
  whoami         show the current session
  menu           list menu items and prices
  book           create a booking
  history        list your bookings
  pay            submit a bank-transfer receipt
  qr             show the payment QR for a booking
  preview        open the locally stored receipt
  admin          dashboard | decide
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}

	logger := newLogger(stderr, cfg.Client.LogLevel)
	slog.SetDefault(logger)

	a := newApp(ctx, cfg, stdin, stdout, logger)
	defer a.Close()

	err = cmd(ctx, a, args[1:])
	var ue *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		return 2
	case errors.Is(err, errCancelled):
		fmt.Fprintln(stderr, "Cancelled.")
		return 1
	default:
		logger.Debug("command failed", slog.String("command", args[0]), slog.Any("error", err))
		fmt.Fprintln(stderr, services.UserMessage(err))
		return 1
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BradenHooton/eventease/internal/governor"
	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/reconcile"
	"github.com/BradenHooton/eventease/internal/services"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":        cmdLogin,
	"mfa":          cmdMFA,
	"logout":       cmdLogout,
	"register":     cmdRegister,
	"forgot":       cmdForgot,
	"reset":        cmdReset,
	"verify-email": cmdVerifyEmail,
	"whoami":       cmdWhoami,
	"menu":         cmdMenu,
	"book":         cmdBook,
	"history":      cmdHistory,
	"pay":          cmdPay,
	"qr":           cmdQR,
	"preview":      cmdPreview,
	"admin":        cmdAdmin,
}

var errCancelled = errors.New("cancelled")

// usageError is a flag parsing failure; the flag set has already printed
// the details.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return &usageError{err: err}
	}
	return nil
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/login")
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	wait := fs.Bool("wait", false, "wait out a temporary lockout instead of failing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *wait {
		if err := a.waitForLogin(ctx); err != nil {
			return err
		}
	}

	if *email == "" {
		v, err := a.readLine("Email: ")
		if err != nil {
			return err
		}
		*email = v
	}
	password, err := a.readSecret("Password: ")
	if err != nil {
		return err
	}

	out, err := a.auth.Login(ctx, services.LoginInput{Email: *email, Password: password})
	if err != nil {
		return err
	}
	if out.MFARequired {
		fmt.Fprintln(a.out, "Enter the 6-digit code from your authenticator with `eventease mfa -code <code>`.")
		return nil
	}

	a.greet(ctx, out.Session)
	return nil
}

// waitForLogin shows a live countdown while a temporary lockout, IP block
// or backoff is in force. A permanent lockout is left for Login to report.
func (a *app) waitForLogin(ctx context.Context) error {
	st := a.auth.LoginStatus(ctx)
	if st.Allowed || st.Reason == governor.ReasonPermanentLockout {
		return nil
	}

	done := make(chan struct{})
	countdown := governor.NewCountdown(a.clock)
	countdown.Start(func(now time.Time) time.Duration {
		return governor.Remaining(st.Record, now)
	}, func(d time.Duration) {
		fmt.Fprintf(a.out, "\rLogin available in %s ", services.FormatCountdown(d))
		if d == 0 {
			close(done)
		}
	})

	select {
	case <-done:
		fmt.Fprintln(a.out)
		return nil
	case <-ctx.Done():
		countdown.Stop()
		fmt.Fprintln(a.out)
		return ctx.Err()
	}
}

func cmdMFA(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/login")
	fs := a.flags("mfa")
	code := fs.String("code", "", "6-digit verification code")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *code == "" {
		pending, err := a.auth.PendingMFA(ctx)
		if err != nil {
			return err
		}
		v, err := a.readLine(fmt.Sprintf("Code for %s: ", pending.Email))
		if err != nil {
			return err
		}
		*code = v
	}

	sess, err := a.auth.VerifyMFA(ctx, *code)
	if err != nil {
		return err
	}
	a.greet(ctx, sess)
	return nil
}

// greet reports the new session and where the user was sent from.
func (a *app) greet(ctx context.Context, sess *models.Session) {
	fmt.Fprintf(a.out, "Logged in as %s (%s).\n", sess.Claims.Email, sess.Claims.Role)

	last, err := a.prefs.LastPath(ctx)
	if err != nil || last == "" || strings.Contains(last, "/login") {
		return
	}
	fmt.Fprintf(a.out, "You were last on %s.\n", last)
	if err := a.prefs.SetLastPath(ctx, ""); err != nil {
		a.logger.Debug("failed to reset last path", "error", err)
	}
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/register")
	fs := a.flags("register")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number, digits only")
	email := fs.String("email", "", "account email")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	password, err := a.readSecret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password: ")
	if err != nil {
		return err
	}

	msg, err := a.auth.Register(ctx, services.RegisterInput{
		Name:            *name,
		Phone:           *phone,
		Email:           *email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func cmdForgot(ctx context.Context, a *app, args []string) error {
	fs := a.flags("forgot")
	email := fs.String("email", "", "account email")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	msg, err := a.auth.ForgotPassword(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func cmdReset(ctx context.Context, a *app, args []string) error {
	fs := a.flags("reset")
	token := fs.String("token", "", "reset token from the email link")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	password, err := a.readSecret("New password: ")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm new password: ")
	if err != nil {
		return err
	}

	msg, err := a.auth.ResetPassword(ctx, *token, password, confirm)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func cmdVerifyEmail(ctx context.Context, a *app, args []string) error {
	fs := a.flags("verify-email")
	token := fs.String("token", "", "verification token from the email link")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	msg, err := a.auth.VerifyEmail(ctx, *token)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	sess, err := a.auth.CurrentSession(ctx)
	if err != nil {
		st := a.auth.LoginStatus(ctx)
		if !st.Allowed {
			fmt.Fprintf(a.out, "Login is currently blocked (%s).\n", st.Reason)
		}
		return err
	}

	fmt.Fprintf(a.out, "%s\t%s\t%s\n", sess.Claims.UserID, sess.Claims.Email, sess.Claims.Role)
	if sess.Claims.ExpiresAt != nil {
		fmt.Fprintf(a.out, "expires %s\n", sess.Claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func cmdMenu(ctx context.Context, a *app, args []string) error {
	c := a.bookings.Catalog()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "MAIN DISH\tSIDES\tPER GUEST")
	for _, d := range c.MainDishes {
		fmt.Fprintf(tw, "%s\t%d\tRM %s\n", d.Name, d.MaxSides, d.Price.StringFixed(2))
	}
	fmt.Fprintln(tw, "\nDRINK\t\tPER GUEST")
	for _, d := range c.Drinks {
		fmt.Fprintf(tw, "%s\t\tRM %s\n", d.Name, d.Price.StringFixed(2))
	}
	fmt.Fprintln(tw, "\nDESSERT\t\tPER GUEST")
	for _, d := range c.Desserts {
		fmt.Fprintf(tw, "%s\t\tRM %s\n", d.Name, d.Price.StringFixed(2))
	}
	fmt.Fprintf(tw, "\nSides: %s\n", strings.Join(c.Sides, ", "))
	return tw.Flush()
}

func cmdBook(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/booking")
	fs := a.flags("book")
	form := menu.BookingForm{}
	fs.StringVar(&form.Event, "event", "", "event type")
	fs.StringVar(&form.Date, "date", "", "event date (YYYY-MM-DD)")
	fs.StringVar(&form.Time, "time", "", "event time (HH:MM)")
	fs.IntVar(&form.Guests, "guests", 0, "number of guests")
	fs.StringVar(&form.MainDish, "main", "", "main dish")
	sides := fs.String("sides", "", "comma-separated side dishes")
	fs.StringVar(&form.Drink, "drink", menu.NoDrink, "drink")
	fs.StringVar(&form.Dessert, "dessert", menu.NoDessert, "dessert")
	fs.StringVar(&form.Notes, "notes", "", "special requests")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	form.Sides = splitList(*sides)

	pending, err := a.bookings.PrepareBooking(ctx, form)
	if err != nil {
		return err
	}

	f := pending.Form()
	fmt.Fprintf(a.out, "%s on %s at %s for %d guests\n", f.Event, f.Date, f.Time, f.Guests)
	fmt.Fprintf(a.out, "%s", f.MainDish)
	if len(f.Sides) > 0 {
		fmt.Fprintf(a.out, " with %s", strings.Join(f.Sides, ", "))
	}
	fmt.Fprintf(a.out, "; %s; %s\n", f.Drink, f.Dessert)
	fmt.Fprintf(a.out, "Total: RM %s\n", pending.Total().StringFixed(2))

	if !*yes && !a.confirm("Confirm booking?") {
		return errCancelled
	}

	res, err := a.bookings.ConfirmBooking(ctx, pending)
	if err != nil {
		return err
	}

	if res.Synced {
		fmt.Fprintf(a.out, "Booking %s created.\n", res.Booking.ID)
	} else {
		fmt.Fprintf(a.out, "Booking %s saved on this device; it could not be sent (%s).\n",
			res.Booking.ID, services.UserMessage(res.SyncErr))
	}
	fmt.Fprintln(a.out, "Pay with `eventease pay -amount <amount> -receipt <file>`.")
	return nil
}

func cmdHistory(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/booking-history")
	hist, err := a.bookings.History(ctx)
	if err != nil {
		return err
	}

	if hist.Degraded {
		fmt.Fprintln(a.out, "Could not reach EventEase; showing bookings saved on this device.")
	}
	if len(hist.Bookings) == 0 {
		fmt.Fprintln(a.out, "No bookings yet.")
		return nil
	}

	catalog := a.bookings.Catalog()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tDATE\tGUESTS\tTOTAL\tSTATUS\tNEXT")
	for _, b := range hist.Bookings {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\t%s\t%s\n",
			b.ID, orPlaceholder(b.EventType), orPlaceholder(b.BookingDate), b.BookingTime,
			b.Guests, reconcile.TotalDisplay(b, catalog), reconcile.CopyFor(b.Status).Label, nextStep(b))
	}
	return tw.Flush()
}

func nextStep(b models.Booking) string {
	if reconcile.NeedsPayment(b.Status) {
		return reconcile.PayActionLabel(b.Status)
	}
	return reconcile.CopyFor(b.Status).Description
}

func cmdPay(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/payment")
	fs := a.flags("pay")
	bookingID := fs.String("booking", "", "booking id (defaults to the active booking)")
	amount := fs.String("amount", "", "amount transferred in RM")
	notes := fs.String("notes", "", "notes for the reviewer")
	receiptPath := fs.String("receipt", "", "receipt image or PDF")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	input := services.PaymentInput{BookingID: *bookingID, Amount: *amount, Notes: *notes}
	if *receiptPath != "" {
		content, err := os.ReadFile(*receiptPath)
		if err != nil {
			return fmt.Errorf("%w: cannot read receipt: %v", models.ErrValidation, err)
		}
		input.Receipt = &services.ReceiptFile{Content: content, FileName: filepath.Base(*receiptPath)}
	}

	res, err := a.payments.Submit(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, res.Message)
	if !res.Uploaded && res.CachedLocally {
		fmt.Fprintln(a.out, "The receipt is kept on this device; view it with `eventease preview`.")
	}
	if !res.StatusSynced {
		fmt.Fprintln(a.out, "EventEase will see the payment once the booking syncs.")
	}
	return nil
}

func cmdQR(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/payment")
	fs := a.flags("qr")
	bookingID := fs.String("booking", "", "booking id (defaults to the active booking)")
	pngPath := fs.String("png", "", "also write the QR code to this PNG file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	id, err := a.bookings.ActiveBookingID(ctx, *bookingID)
	if err != nil {
		return err
	}
	b, err := a.bookings.Get(ctx, id)
	if err != nil {
		return err
	}
	total, ok := reconcile.Total(*b, a.bookings.Catalog())
	if !ok {
		return fmt.Errorf("%w: booking %s has no total", models.ErrValidation, id)
	}

	qr, err := a.payments.PaymentQR(b.ID, total)
	if err != nil {
		return err
	}

	fmt.Fprint(a.out, qr.Terminal)
	fmt.Fprintf(a.out, "Transfer RM %s, reference %s\n", total.StringFixed(2), b.ID)
	if *pngPath != "" {
		if err := os.WriteFile(*pngPath, qr.PNG, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func cmdPreview(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/payment")
	fs := a.flags("preview")
	bookingID := fs.String("booking", "", "booking id (defaults to the active booking)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return a.servePreview(ctx, func(ctx context.Context) (string, func(), error) {
		u, err := a.payments.PreviewReceipt(ctx, *bookingID)
		if err != nil {
			return "", nil, err
		}
		return u.URL, u.Release, nil
	})
}

func cmdAdmin(ctx context.Context, a *app, args []string) error {
	a.nav.Visit("/admin")
	if len(args) == 0 {
		return fmt.Errorf("%w: admin needs a subcommand (dashboard or decide)", models.ErrValidation)
	}

	switch args[0] {
	case "dashboard":
		return adminDashboard(ctx, a)
	case "decide":
		return adminDecide(ctx, a, args[1:])
	}
	return fmt.Errorf("%w: unknown admin subcommand %q", models.ErrValidation, args[0])
}

func adminDashboard(ctx context.Context, a *app) error {
	dash, err := a.admin.Dashboard(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d users\n\n", len(dash.Users))
	if dash.BookingsError != "" {
		fmt.Fprintln(a.out, dash.BookingsError)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tEVENT\tDATE\tTOTAL\tSTATUS\tRECEIPT")
	for _, b := range dash.Bookings {
		receipt := reconcile.Placeholder
		if b.Payment != nil && b.Payment.ReceiptName != "" {
			receipt = b.Payment.ReceiptName
		} else if b.ReceiptName != "" {
			receipt = b.ReceiptName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.OwnerName, orPlaceholder(b.EventType), orPlaceholder(b.BookingDate),
			b.TotalDisplay, b.ActionLabel, receipt)
	}
	return tw.Flush()
}

func adminDecide(ctx context.Context, a *app, args []string) error {
	fs := a.flags("admin decide")
	bookingID := fs.String("booking", "", "booking id")
	decision := fs.String("decision", "", "approve, reject or revert")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	pending, err := a.admin.PrepareDecision(ctx, *bookingID, services.Decision(*decision))
	if err != nil {
		return err
	}
	if !*yes && !a.confirm(pending.Prompt()) {
		return errCancelled
	}

	if err := a.admin.ConfirmDecision(ctx, pending); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Booking %s marked %s.\n", pending.BookingID(), strings.ToUpper(string(pending.Status())))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return reconcile.Placeholder
	}
	return s
}

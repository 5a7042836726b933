package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/reconcile"
	"github.com/BradenHooton/eventease/internal/repositories"
	"github.com/BradenHooton/eventease/internal/session"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// BookingAPI defines the backend booking calls
type BookingAPI interface {
	ListBookings(ctx context.Context) ([]reconcile.Record, error)
	GetBooking(ctx context.Context, id string) (reconcile.Record, error)
	CreateBooking(ctx context.Context, booking reconcile.Record) (reconcile.Record, error)
}

// BookingService creates bookings and assembles the booking history from
// the backend and the local drafts.
type BookingService struct {
	api     BookingAPI
	tokens  *session.TokenStore
	drafts  *repositories.DraftRepository
	prefs   *repositories.PreferenceRepository
	catalog *menu.Catalog
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(bookingAPI BookingAPI, tokens *session.TokenStore, drafts *repositories.DraftRepository, prefs *repositories.PreferenceRepository, catalog *menu.Catalog, clock clockwork.Clock, logger *slog.Logger) *BookingService {
	return &BookingService{
		api:     bookingAPI,
		tokens:  tokens,
		drafts:  drafts,
		prefs:   prefs,
		catalog: catalog,
		clock:   clock,
		logger:  logger,
	}
}

// Catalog returns the menu bookings are priced against.
func (s *BookingService) Catalog() *menu.Catalog {
	return s.catalog
}

// PendingBooking is a validated, priced booking waiting for the user's
// confirmation. It cannot be changed; prepare a new one instead.
type PendingBooking struct {
	form       menu.BookingForm
	total      decimal.Decimal
	owner      models.Claims
	preparedAt time.Time
}

// Form returns a copy of the submitted form.
func (p *PendingBooking) Form() menu.BookingForm {
	form := p.form
	form.Sides = append([]string(nil), p.form.Sides...)
	return form
}

func (p *PendingBooking) Total() decimal.Decimal { return p.total }

func (p *PendingBooking) PreparedAt() time.Time { return p.preparedAt }

// BookingResult is a confirmed booking. Synced is false when only the
// local draft was written.
type BookingResult struct {
	Booking models.Booking
	Synced  bool
	SyncErr error
}

// BookingHistory is the merged list for the current user. Degraded is
// set when the backend could not be reached and only drafts are shown.
type BookingHistory struct {
	Bookings []models.Booking
	Degraded bool
}

// PrepareBooking validates and prices form for the logged-in user.
func (s *BookingService) PrepareBooking(ctx context.Context, form menu.BookingForm) (*PendingBooking, error) {
	sess, err := s.tokens.CurrentSession(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	form.Event = strings.TrimSpace(form.Event)
	form.Sides = append([]string(nil), form.Sides...)
	if form.Drink == "" {
		form.Drink = menu.NoDrink
	}
	if form.Dessert == "" {
		form.Dessert = menu.NoDessert
	}

	total, err := s.catalog.Quote(form)
	if err != nil {
		return nil, err
	}

	return &PendingBooking{
		form:       form,
		total:      total,
		owner:      sess.Claims,
		preparedAt: s.clock.Now(),
	}, nil
}

// ConfirmBooking writes the local draft, makes it the active booking and
// submits it to the backend. A backend failure leaves the draft in place
// and is reported in the result, not as an error.
func (s *BookingService) ConfirmBooking(ctx context.Context, pending *PendingBooking) (*BookingResult, error) {
	if pending == nil {
		return nil, fmt.Errorf("%w: nothing to confirm", models.ErrBadRequest)
	}

	now := s.clock.Now().UTC()
	draft := newDraft(pending, now)
	id := reconcile.ID(draft)

	localErr := s.drafts.Upsert(ctx, draft)
	if localErr != nil {
		s.logger.Warn("failed to save booking draft", slog.String("booking_id", id), slog.Any("error", localErr))
	}
	if err := s.prefs.SetActiveBookingID(ctx, id); err != nil {
		s.logger.Warn("failed to remember active booking", slog.Any("error", err))
	}

	remote, err := s.api.CreateBooking(ctx, remotePayload(draft))
	if err != nil {
		if localErr != nil {
			return nil, errors.Join(localErr, err)
		}
		s.logger.Info("booking kept as local draft", slog.String("booking_id", id), slog.Any("error", err))
		booking := reconcile.Normalize(draft)
		booking.Local = true
		return &BookingResult{Booking: booking, SyncErr: err}, nil
	}

	if remoteID := reconcile.ID(remote); remoteID != "" && remoteID != id {
		// the draft now resolves to the backend id so history shows it once
		draft["_id"] = remoteID
		if err := s.drafts.Upsert(ctx, draft); err != nil {
			s.logger.Warn("failed to link draft to backend booking", slog.Any("error", err))
		}
	}

	s.logger.Info("booking created", slog.String("booking_id", reconcile.ID(draft)))
	return &BookingResult{Booking: reconcile.Normalize(draft), Synced: true}, nil
}

// History returns the user's bookings, newest first. When the backend is
// unreachable the local drafts alone are returned.
func (s *BookingService) History(ctx context.Context) (*BookingHistory, error) {
	sess, err := s.tokens.CurrentSession(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	degraded := false
	remote, err := s.api.ListBookings(ctx)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) || errors.Is(err, models.ErrForbidden) {
			return nil, err
		}
		s.logger.Warn("failed to fetch bookings, showing local drafts", slog.Any("error", err))
		remote = nil
		degraded = true
	}
	for i, rec := range remote {
		remote[i] = claimOwnership(rec, sess.Claims)
	}

	merged := reconcile.MergeBookings(remote, s.localRecords(ctx))
	mine := reconcile.FilterForOwner(merged, sess.Claims)

	return &BookingHistory{Bookings: reconcile.NormalizeAll(mine), Degraded: degraded}, nil
}

// Get returns one booking from the backend, or the local draft when the
// backend does not have it.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	b := reconcile.Normalize(rec)
	return &b, nil
}

// ActiveBookingID resolves the booking to act on: explicit, then the
// remembered one.
func (s *BookingService) ActiveBookingID(ctx context.Context, explicit string) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	id, err := s.prefs.ActiveBookingID(ctx)
	if err != nil || id == "" {
		return "", models.ErrNoActiveBooking
	}
	return id, nil
}

func (s *BookingService) record(ctx context.Context, id string) (reconcile.Record, error) {
	draft, draftErr := s.drafts.Get(ctx, id)

	remoteID := id
	if draftErr == nil {
		remoteID = reconcile.ID(draft)
	}

	if !isLocalID(remoteID) {
		rec, err := s.api.GetBooking(ctx, remoteID)
		if err == nil {
			return rec, nil
		}
		if draftErr != nil {
			return nil, err
		}
		s.logger.Info("backend booking unavailable, using local draft", slog.String("booking_id", id), slog.Any("error", err))
	}

	if draftErr != nil {
		return nil, models.ErrNotFound
	}
	return reconcile.ToRemoteShape(draft), nil
}

func (s *BookingService) localRecords(ctx context.Context) []reconcile.Record {
	drafts, err := s.drafts.List(ctx)
	if err != nil {
		s.logger.Warn("local drafts unavailable", slog.Any("error", err))
		return nil
	}
	out := make([]reconcile.Record, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, reconcile.Record(d))
	}
	return out
}

// newDraft lays a pending booking out the way the local booking form
// stores it.
func newDraft(p *PendingBooking, now time.Time) reconcile.Record {
	form := p.Form()
	amount, _ := p.total.Float64()
	return reconcile.Record{
		"id":             localID(now),
		"userId":         p.owner.UserID,
		"userEmail":      p.owner.Email,
		"createdAt":      now.Format(time.RFC3339Nano),
		"event":          form.Event,
		"bookingDate":    form.Date,
		"bookingTime":    form.Time,
		"guestsPerTable": form.Guests,
		"mainDish":       form.MainDish,
		"sideDishes":     stringsToAny(form.Sides),
		"drink":          form.Drink,
		"dessert":        form.Dessert,
		"amountDue":      amount,
		"status":         string(models.StatusAwaitingPayment),
		"notes":          form.Notes,
	}
}

// remotePayload is the create body: the draft in backend field names,
// without the client-only id and source marker.
func remotePayload(draft reconcile.Record) reconcile.Record {
	out := reconcile.ToRemoteShape(draft)
	delete(out, "id")
	delete(out, "_id")
	delete(out, "source")
	return out
}

// claimOwnership stamps the session's identity on a record returned by a
// user-scoped endpoint that left out the owner fields.
func claimOwnership(rec reconcile.Record, claims models.Claims) reconcile.Record {
	if reconcile.OwnerID(rec) != "" || reconcile.OwnerEmail(rec) != "" {
		return rec
	}
	out := rec.Clone()
	out["userId"] = claims.UserID
	out["userEmail"] = claims.Email
	return out
}

const localIDPrefix = "b_"

func localID(now time.Time) string {
	return fmt.Sprintf("%s%d", localIDPrefix, now.UnixMilli())
}

func isLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/reconcile"
	"github.com/BradenHooton/eventease/internal/session"
	pkglogger "github.com/BradenHooton/eventease/pkg/logger"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// AdminAPI defines the backend calls behind the admin dashboard
type AdminAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAllBookings(ctx context.Context) ([]reconcile.Record, error)
	GetBooking(ctx context.Context, id string) (reconcile.Record, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
}

// AdminService backs the admin dashboard
type AdminService struct {
	api               AdminAPI
	tokens            *session.TokenStore
	catalog           *menu.Catalog
	enrichConcurrency int
	clock             clockwork.Clock
	logger            *slog.Logger
	auditLogger       *pkglogger.AuditLogger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	adminAPI AdminAPI,
	tokens *session.TokenStore,
	catalog *menu.Catalog,
	enrichConcurrency int,
	clock clockwork.Clock,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AdminService {
	return &AdminService{
		api:               adminAPI,
		tokens:            tokens,
		catalog:           catalog,
		enrichConcurrency: enrichConcurrency,
		clock:             clock,
		logger:            logger,
		auditLogger:       auditLogger,
	}
}

// AdminBooking is a booking row on the dashboard
type AdminBooking struct {
	models.Booking
	ActionLabel  string
	TotalDisplay string
	StatusCopy   reconcile.StatusCopy
}

// Dashboard is everything the admin dashboard shows. BookingsError is set
// when the booking list could not be loaded.
type Dashboard struct {
	Users         []models.User
	Bookings      []AdminBooking
	BookingsError string
}

// Decision is an admin's verdict on a submitted payment
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionRevert  Decision = "revert"
)

var decisionStatus = map[Decision]models.BookingStatus{
	DecisionApprove: models.StatusCompleted,
	DecisionReject:  models.StatusRejected,
	DecisionRevert:  models.StatusPending,
}

// PendingDecision is a status change awaiting the admin's confirmation.
type PendingDecision struct {
	bookingID string
	decision  Decision
	status    models.BookingStatus
	prompt    string
}

func (p *PendingDecision) BookingID() string            { return p.bookingID }
func (p *PendingDecision) Decision() Decision           { return p.decision }
func (p *PendingDecision) Status() models.BookingStatus { return p.status }
func (p *PendingDecision) Prompt() string               { return p.prompt }

// Dashboard loads users and bookings side by side. A failed user list is
// shown as empty; a failed booking list sets BookingsError. Summary
// booking records are enriched with their details.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	var (
		users       []models.User
		records     []reconcile.Record
		bookingsErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		list, err := s.api.ListUsers(ctx)
		if err != nil {
			s.logger.Warn("failed to fetch users", slog.Any("error", err))
			return nil
		}
		users = list
		return nil
	})
	g.Go(func() error {
		list, err := s.api.ListAllBookings(ctx)
		if err != nil {
			s.logger.Warn("failed to fetch bookings", slog.Any("error", err))
			bookingsErr = err
			return nil
		}
		records = list
		return nil
	})
	_ = g.Wait()

	dash := &Dashboard{Users: users, Bookings: []AdminBooking{}}
	if dash.Users == nil {
		dash.Users = []models.User{}
	}
	if bookingsErr != nil {
		dash.BookingsError = ErrBookingsUnavailable.Error()
		return dash, nil
	}

	enriched := reconcile.EnrichMissingDetails(ctx, records, s.api.GetBooking, s.enrichConcurrency)
	names := userNames(users)

	for _, b := range reconcile.NormalizeAll(enriched) {
		if name, ok := names[b.OwnerID]; ok && (b.OwnerName == b.OwnerID || b.OwnerName == "Unknown") {
			b.OwnerName = name
		}
		raw := b.PaymentStatus
		if raw == "" {
			raw = string(b.Status)
		}
		dash.Bookings = append(dash.Bookings, AdminBooking{
			Booking:      b,
			ActionLabel:  reconcile.AdminActionLabel(raw),
			TotalDisplay: reconcile.TotalDisplay(b, s.catalog),
			StatusCopy:   reconcile.CopyFor(b.Status),
		})
	}

	return dash, nil
}

// PrepareDecision validates a verdict and returns it for confirmation.
func (s *AdminService) PrepareDecision(ctx context.Context, bookingID string, decision Decision) (*PendingDecision, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: booking id is required", models.ErrValidation)
	}

	decision = Decision(strings.ToLower(strings.TrimSpace(string(decision))))
	status, ok := decisionStatus[decision]
	if !ok {
		return nil, fmt.Errorf("%w: decision must be approve, reject or revert", models.ErrValidation)
	}

	return &PendingDecision{
		bookingID: bookingID,
		decision:  decision,
		status:    status,
		prompt:    fmt.Sprintf("%s booking %s? It will be marked %s.", capitalize(string(decision)), bookingID, strings.ToUpper(string(status))),
	}, nil
}

// ConfirmDecision applies a prepared verdict on the backend.
func (s *AdminService) ConfirmDecision(ctx context.Context, pending *PendingDecision) error {
	if pending == nil {
		return fmt.Errorf("%w: nothing to confirm", models.ErrBadRequest)
	}

	sess, err := s.tokens.CurrentSession(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return models.ErrForbidden
	}

	if err := s.api.UpdateBookingStatus(ctx, pending.bookingID, pending.status); err != nil {
		s.logger.Warn("booking decision failed",
			slog.String("booking_id", pending.bookingID),
			slog.String("decision", string(pending.decision)),
			slog.Any("error", err))
		return err
	}

	s.auditLogger.LogAccountAction(pkglogger.EventBookingDecision, sess.Claims.UserID, map[string]string{
		"booking_id": pending.bookingID,
		"decision":   string(pending.decision),
		"status":     string(pending.status),
	})
	return nil
}

func (s *AdminService) requireAdmin(ctx context.Context) error {
	sess, err := s.tokens.CurrentSession(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return models.ErrForbidden
	}
	return nil
}

func userNames(users []models.User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		if u.ID != "" && u.Name != "" {
			names[u.ID] = u.Name
		}
	}
	return names
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package governor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// AttemptRepository defines persistence for the attempt record
type AttemptRepository interface {
	Load(ctx context.Context) (models.AttemptRecord, error)
	Save(ctx context.Context, rec models.AttemptRecord) error
	Clear(ctx context.Context) error
}

// Status is a snapshot of the governor at a point in time.
type Status struct {
	Allowed   bool
	Reason    Reason
	State     LockState
	Remaining time.Duration
	Record    models.AttemptRecord
}

// Governor applies the pure attempt rules to the persisted record. Writes
// are last-write-wins; another client sharing the storage may interleave.
type Governor struct {
	repo        AttemptRepository
	policy      Policy
	clock       clockwork.Clock
	logger      *slog.Logger
	auditLogger *logger.AuditLogger
}

// New creates a new Governor
func New(repo AttemptRepository, policy Policy, clock clockwork.Clock, log *slog.Logger, auditLogger *logger.AuditLogger) *Governor {
	return &Governor{
		repo:        repo,
		policy:      policy,
		clock:       clock,
		logger:      log,
		auditLogger: auditLogger,
	}
}

// Clock returns the clock the governor reads time from.
func (g *Governor) Clock() clockwork.Clock {
	return g.clock
}

// Status loads the record and evaluates it at the current time.
func (g *Governor) Status(ctx context.Context) Status {
	return g.snapshot(g.load(ctx), g.clock.Now())
}

// RecordFailure counts a rejected login, then mirrors any server timing.
func (g *Governor) RecordFailure(ctx context.Context, sig ServerSignal) Status {
	now := g.clock.Now()
	before := g.load(ctx)

	rec, _ := RecordFailure(before, now, g.policy)
	rec = ApplyServerSignal(rec, sig, now, g.policy)

	g.save(ctx, rec)
	g.logTransition(before, rec, now)

	return g.snapshot(rec, now)
}

// ApplyServerSignal mirrors server timing without counting a failure, as
// for a 429 IP block.
func (g *Governor) ApplyServerSignal(ctx context.Context, sig ServerSignal) Status {
	now := g.clock.Now()
	before := g.load(ctx)

	rec := ApplyServerSignal(before, sig, now, g.policy)
	if sig.IsZero() {
		return g.snapshot(rec, now)
	}

	g.save(ctx, rec)
	g.logTransition(before, rec, now)

	return g.snapshot(rec, now)
}

// RecordSuccess clears the record after a login or MFA verification.
func (g *Governor) RecordSuccess(ctx context.Context) {
	g.clear(ctx)
}

// Reset clears the record after a password reset.
func (g *Governor) Reset(ctx context.Context) {
	g.clear(ctx)
	g.auditLogger.LogAccountAction(logger.EventPasswordReset, "", map[string]string{"lockout": "cleared"})
}

func (g *Governor) clear(ctx context.Context) {
	if err := g.repo.Clear(ctx); err != nil && !errors.Is(err, models.ErrNotFound) {
		g.logger.Warn("failed to clear login attempt record", slog.Any("error", err))
	}
}

func (g *Governor) load(ctx context.Context) models.AttemptRecord {
	rec, err := g.repo.Load(ctx)
	if err != nil {
		g.logger.Warn("login attempt record unavailable, treating as clear", slog.Any("error", err))
	}
	return rec
}

func (g *Governor) save(ctx context.Context, rec models.AttemptRecord) {
	if err := g.repo.Save(ctx, rec); err != nil {
		g.logger.Warn("failed to persist login attempt record", slog.Any("error", err))
	}
}

func (g *Governor) snapshot(rec models.AttemptRecord, now time.Time) Status {
	allowed, reason := CanAttempt(rec, now)
	return Status{
		Allowed:   allowed,
		Reason:    reason,
		State:     State(rec, now),
		Remaining: Remaining(rec, now),
		Record:    rec,
	}
}

func (g *Governor) logTransition(before, after models.AttemptRecord, now time.Time) {
	state := State(after, now)
	switch {
	case after.PermanentlyLocked && !before.PermanentlyLocked:
		g.auditLogger.LogLockout(logger.EventLockoutPermanent, after.FailedAttempts, nil)
	case state == StateTemporary && State(before, now) != StateTemporary:
		g.auditLogger.LogLockout(logger.EventLockoutTemporary, after.FailedAttempts, after.LockedUntil)
	default:
		g.logger.Debug("login attempt record updated",
			slog.Int("failed_attempts", after.FailedAttempts),
			slog.String("state", string(state)),
			slog.Duration("remaining", Remaining(after, now)))
	}
}

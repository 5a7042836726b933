package governor

import (
	"time"

	"github.com/BradenHooton/eventease/internal/models"
)

// LockState is the attempt-count state of the record.
type LockState string

const (
	StateClear     LockState = "clear"
	StateTemporary LockState = "temporarily_locked"
	StatePermanent LockState = "permanently_locked"
)

// Reason explains why CanAttempt refused.
type Reason string

const (
	ReasonNone             Reason = "none"
	ReasonPermanentLockout Reason = "permanent_lockout"
	ReasonTemporaryLockout Reason = "temporary_lockout"
	ReasonIPBlocked        Reason = "ip_blocked"
	ReasonBackoff          Reason = "backoff"
)

// ServerSignal is the lockout information carried by a login response.
// Nil fields were not sent.
type ServerSignal struct {
	RetryAfterSeconds *int
	LockUntil         *time.Time
	PermanentlyLocked bool
	IPBlockedUntil    *time.Time
	RemainingAttempts *int
}

// IsZero reports whether the signal carries nothing to apply.
func (s ServerSignal) IsZero() bool {
	return s.RetryAfterSeconds == nil &&
		s.LockUntil == nil &&
		!s.PermanentlyLocked &&
		s.IPBlockedUntil == nil &&
		s.RemainingAttempts == nil
}

func cleared(now time.Time) models.AttemptRecord {
	return models.AttemptRecord{Version: models.AttemptRecordVersion, UpdatedAt: now}
}

// RecordFailure counts one failed login and returns the new record with
// the lock state it produced. A permanently locked record is returned
// unchanged.
func RecordFailure(rec models.AttemptRecord, now time.Time, p Policy) (models.AttemptRecord, LockState) {
	if rec.PermanentlyLocked {
		return rec, StatePermanent
	}

	next := rec
	next.Version = models.AttemptRecordVersion
	next.FailedAttempts++
	next.UpdatedAt = now

	switch {
	case next.FailedAttempts >= p.PermThreshold:
		next.PermanentlyLocked = true
		next.LockedUntil = nil
		next.BackoffUntil = nil
		return next, StatePermanent

	case next.FailedAttempts >= p.TempThreshold && !next.HadFirstLockout:
		until := now.Add(p.LockoutDuration)
		next.LockedUntil = &until
		next.HadFirstLockout = true
		next.BackoffUntil = nil
		return next, StateTemporary
	}

	if d := p.backoff(next.FailedAttempts); d > 0 {
		until := now.Add(d)
		next.BackoffUntil = &until
	}

	return next, State(next, now)
}

// RecordSuccess clears the whole record.
func RecordSuccess(now time.Time) models.AttemptRecord {
	return cleared(now)
}

// Reset clears lockouts and the counter after a password reset.
func Reset(now time.Time) models.AttemptRecord {
	return cleared(now)
}

// ApplyServerSignal mirrors the backend's timing onto rec. Server values
// replace whatever the client computed.
func ApplyServerSignal(rec models.AttemptRecord, sig ServerSignal, now time.Time, p Policy) models.AttemptRecord {
	if sig.IsZero() {
		return rec
	}

	next := rec
	next.Version = models.AttemptRecordVersion
	next.UpdatedAt = now

	if sig.RetryAfterSeconds != nil {
		if *sig.RetryAfterSeconds > 0 {
			until := now.Add(time.Duration(*sig.RetryAfterSeconds) * time.Second)
			next.BackoffUntil = &until
		} else {
			next.BackoffUntil = nil
		}
	}

	if sig.PermanentlyLocked {
		next.PermanentlyLocked = true
		next.LockedUntil = nil
		if next.FailedAttempts < p.PermThreshold {
			next.FailedAttempts = p.PermThreshold
		}
	} else if sig.LockUntil != nil {
		until := *sig.LockUntil
		next.PermanentlyLocked = false
		next.LockedUntil = &until
		next.HadFirstLockout = true
		if next.FailedAttempts < p.TempThreshold {
			next.FailedAttempts = p.TempThreshold
		}
	}

	if sig.IPBlockedUntil != nil {
		until := *sig.IPBlockedUntil
		next.IPBlockedUntil = &until
	}

	if sig.RemainingAttempts != nil && !next.PermanentlyLocked {
		threshold := p.TempThreshold
		if next.HadFirstLockout {
			threshold = p.PermThreshold
		}
		failed := threshold - *sig.RemainingAttempts
		if failed < 0 {
			failed = 0
		}
		next.FailedAttempts = failed
	}

	return next
}

// State reports the attempt-count state at now.
func State(rec models.AttemptRecord, now time.Time) LockState {
	switch {
	case rec.PermanentlyLocked:
		return StatePermanent
	case active(rec.LockedUntil, now):
		return StateTemporary
	default:
		return StateClear
	}
}

// CanAttempt reports whether a login may be sent at now and, if not, the
// first blocking reason in priority order.
func CanAttempt(rec models.AttemptRecord, now time.Time) (bool, Reason) {
	switch {
	case rec.PermanentlyLocked:
		return false, ReasonPermanentLockout
	case active(rec.LockedUntil, now):
		return false, ReasonTemporaryLockout
	case active(rec.IPBlockedUntil, now):
		return false, ReasonIPBlocked
	case active(rec.BackoffUntil, now):
		return false, ReasonBackoff
	default:
		return true, ReasonNone
	}
}

// Remaining returns how long the blocking window at now still lasts,
// derived only from the stored expiry instants. It is zero when nothing
// blocks and for a permanent lockout, which has no expiry.
func Remaining(rec models.AttemptRecord, now time.Time) time.Duration {
	_, reason := CanAttempt(rec, now)

	var until *time.Time
	switch reason {
	case ReasonTemporaryLockout:
		until = rec.LockedUntil
	case ReasonIPBlocked:
		until = rec.IPBlockedUntil
	case ReasonBackoff:
		until = rec.BackoffUntil
	default:
		return 0
	}

	if d := until.Sub(now); d > 0 {
		return d
	}
	return 0
}

func active(until *time.Time, now time.Time) bool {
	return until != nil && until.After(now)
}

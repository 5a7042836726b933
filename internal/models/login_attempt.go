package models

import "time"

// AttemptRecordVersion is bumped whenever the persisted layout of
// AttemptRecord changes. Records with another version are discarded on load.
const AttemptRecordVersion = 1

// AttemptRecord is the process-wide login attempt state shared by every
// client reading the same local storage. All windows are stored as expiry
// instants; remaining durations are always derived from them.
type AttemptRecord struct {
	Version           int        `json:"version"`
	FailedAttempts    int        `json:"failedAttempts"`
	HadFirstLockout   bool       `json:"hadFirstLockout"`
	LockedUntil       *time.Time `json:"lockedUntil,omitempty"`
	PermanentlyLocked bool       `json:"permanentlyLocked"`
	BackoffUntil      *time.Time `json:"backoffUntil,omitempty"`
	IPBlockedUntil    *time.Time `json:"ipBlockedUntil,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// IsZero reports whether the record carries no attempt state at all.
func (r AttemptRecord) IsZero() bool {
	return r.FailedAttempts == 0 &&
		!r.HadFirstLockout &&
		!r.PermanentlyLocked &&
		r.LockedUntil == nil &&
		r.BackoffUntil == nil &&
		r.IPBlockedUntil == nil
}

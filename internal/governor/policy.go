package governor

import (
	"time"

	"github.com/BradenHooton/eventease/internal/config"
)

// Policy holds the client-side lockout thresholds. The backend remains the
// authority; these only decide when to stop sending doomed requests.
type Policy struct {
	TempThreshold   int
	PermThreshold   int
	LockoutDuration time.Duration
	BackoffBase     time.Duration
	BackoffMax      time.Duration
}

// DefaultPolicy returns 3 failures for a 5 minute lockout, 6 for a permanent
// one, and a 1s..30s client backoff between attempts.
func DefaultPolicy() Policy {
	return Policy{
		TempThreshold:   3,
		PermThreshold:   6,
		LockoutDuration: 5 * time.Minute,
		BackoffBase:     1 * time.Second,
		BackoffMax:      30 * time.Second,
	}
}

// PolicyFromConfig builds a Policy from the login section of the config.
func PolicyFromConfig(cfg config.LoginConfig) Policy {
	return Policy{
		TempThreshold:   cfg.TempLockoutThreshold,
		PermThreshold:   cfg.PermLockoutThreshold,
		LockoutDuration: cfg.LockoutDuration,
		BackoffBase:     cfg.BackoffBase,
		BackoffMax:      cfg.BackoffMax,
	}
}

// backoff returns base·2^(n-1) capped at BackoffMax, or 0 when disabled.
func (p Policy) backoff(failures int) time.Duration {
	if p.BackoffBase <= 0 || failures < 1 {
		return 0
	}

	d := p.BackoffBase
	for i := 1; i < failures; i++ {
		d *= 2
		if p.BackoffMax > 0 && d >= p.BackoffMax {
			return p.BackoffMax
		}
	}
	if p.BackoffMax > 0 && d > p.BackoffMax {
		return p.BackoffMax
	}
	return d
}

package governor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/repositories"
	"github.com/BradenHooton/eventease/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGovernor(storage repositories.LocalStorage, clock clockwork.Clock) *Governor {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repositories.NewLoginAttemptRepository(storage), DefaultPolicy(), clock, log, logger.NewAuditLogger(log))
}

func TestGovernor_SuccessAtAnyPointClears(t *testing.T) {
	ctx := context.Background()

	for n := 0; n <= 7; n++ {
		clock := clockwork.NewFakeClockAt(t0)
		gov := newTestGovernor(repositories.NewMemoryStorage(), clock)

		for i := 0; i < n; i++ {
			gov.RecordFailure(ctx, ServerSignal{})
		}
		gov.RecordSuccess(ctx)

		status := gov.Status(ctx)
		assert.True(t, status.Allowed, "after %d failures", n)
		assert.Equal(t, 0, status.Record.FailedAttempts)
		assert.Equal(t, StateClear, status.State)
	}
}

func TestGovernor_ResetClearsAnyLockout(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(t0)
	gov := newTestGovernor(repositories.NewMemoryStorage(), clock)

	for i := 0; i < 6; i++ {
		gov.RecordFailure(ctx, ServerSignal{})
	}
	require.Equal(t, ReasonPermanentLockout, gov.Status(ctx).Reason)

	gov.Reset(ctx)
	gov.Reset(ctx)

	status := gov.Status(ctx)
	assert.True(t, status.Allowed)
	assert.Equal(t, StateClear, status.State)
	assert.Equal(t, 0, status.Record.FailedAttempts)
}

func TestGovernor_CountdownSurvivesReload(t *testing.T) {
	ctx := context.Background()
	storage := repositories.NewMemoryStorage()
	clock := clockwork.NewFakeClockAt(t0)

	gov := newTestGovernor(storage, clock)
	var status Status
	for i := 0; i < 3; i++ {
		status = gov.RecordFailure(ctx, ServerSignal{})
	}
	require.Equal(t, StateTemporary, status.State)
	expiry := *status.Record.LockedUntil

	clock.Advance(90 * time.Second)

	// a fresh governor over the same storage rebuilds state from the
	// persisted expiry only
	reloaded := newTestGovernor(storage, clock)
	status = reloaded.Status(ctx)

	assert.Equal(t, ReasonTemporaryLockout, status.Reason)
	assert.Equal(t, expiry.Sub(clock.Now()), status.Remaining)
	assert.Equal(t, 210*time.Second, status.Remaining)

	clock.Advance(10 * time.Minute)
	status = reloaded.Status(ctx)
	assert.True(t, status.Allowed)
	assert.Equal(t, time.Duration(0), status.Remaining)
}

func TestGovernor_ServerSignalOverridesClientLock(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(t0)
	gov := newTestGovernor(repositories.NewMemoryStorage(), clock)

	serverLock := t0.Add(90 * time.Second)
	status := gov.RecordFailure(ctx, ServerSignal{LockUntil: &serverLock, RemainingAttempts: intPtr(3)})

	assert.Equal(t, ReasonTemporaryLockout, status.Reason)
	assert.Equal(t, 90*time.Second, status.Remaining)
	assert.Equal(t, 3, status.Record.FailedAttempts)
}

func TestGovernor_IPBlockWithoutCounting(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(t0)
	gov := newTestGovernor(repositories.NewMemoryStorage(), clock)

	blocked := t0.Add(15 * time.Minute)
	status := gov.ApplyServerSignal(ctx, ServerSignal{IPBlockedUntil: &blocked})

	assert.False(t, status.Allowed)
	assert.Equal(t, ReasonIPBlocked, status.Reason)
	assert.Equal(t, 0, status.Record.FailedAttempts)
	assert.Equal(t, 15*time.Minute, status.Remaining)
}

func TestGovernor_UnavailableStorageTreatedAsClear(t *testing.T) {
	ctx := context.Background()
	gov := newTestGovernor(repositories.UnavailableStorage{}, clockwork.NewFakeClockAt(t0))

	status := gov.RecordFailure(ctx, ServerSignal{})
	assert.Equal(t, 1, status.Record.FailedAttempts)

	// nothing persisted
	status = gov.Status(ctx)
	assert.True(t, status.Allowed)
	assert.Equal(t, models.AttemptRecordVersion, status.Record.Version)
}

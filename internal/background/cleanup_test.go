package background

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BradenHooton/eventease/internal/receipts"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return 0
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupManager_SweepsOnEveryTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sweeper := &countingSweeper{}
	cm := NewCleanupManager(sweeper, clock, discardLogger(), 30*time.Second)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return sweeper.calls.Load() == 1 }, time.Second, 5*time.Millisecond, "sweeps on start")

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool { return sweeper.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	cm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_ReleasesExpiredURLs(t *testing.T) {
	clock := clockwork.NewFakeClock()
	registry := receipts.NewRegistry(clock, time.Minute)
	registry.Create(receipts.Blob{Content: []byte("x"), ContentType: "image/png"})
	clock.Advance(2 * time.Minute)
	live := registry.Create(receipts.Blob{Content: []byte("y"), ContentType: "image/png"})

	ctx, cancel := context.WithCancel(context.Background())
	cm := NewCleanupManager(registry, clock, discardLogger(), time.Minute)

	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return registry.Len() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := registry.Resolve(live.Token)
	assert.True(t, ok)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager ignored context cancellation")
	}
}

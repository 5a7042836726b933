package governor

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Countdown drives a once-per-second display of a lockout window. Every
// tick recomputes the remaining time from the persisted expiry, so a
// restarted process resumes at the right value.
type Countdown struct {
	clock clockwork.Clock

	mu         sync.Mutex
	generation uint64
	stop       chan struct{}
}

// NewCountdown creates a new Countdown
func NewCountdown(clock clockwork.Clock) *Countdown {
	return &Countdown{clock: clock}
}

// Start supersedes any running countdown. onTick is called once
// immediately and then every second with remaining(now) until it reaches
// zero or Stop is called. onTick runs with the countdown's lock held and
// must not call Start or Stop.
func (c *Countdown) Start(remaining func(now time.Time) time.Duration, onTick func(time.Duration)) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.stop != nil {
		close(c.stop)
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	if !c.emit(gen, remaining, onTick) {
		return
	}

	ticker := c.clock.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				if !c.emit(gen, remaining, onTick) {
					return
				}
			}
		}
	}()
}

// Stop halts the running countdown. Ticks already in flight are dropped.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Countdown) emit(gen uint64, remaining func(time.Time) time.Duration, onTick func(time.Duration)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return false
	}

	d := remaining(c.clock.Now())
	if d < 0 {
		d = 0
	}
	onTick(d)
	return d > 0
}

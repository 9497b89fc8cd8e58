package reveal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"draftreveal/pkg/logging"
)

// Cue selects the countdown colour within a step.
type Cue int

const (
	// CueEarly is shown at the start of each step.
	CueEarly Cue = iota
	// CueLate is shown from half a tick until the value decrements.
	CueLate
)

func (c Cue) String() string {
	if c == CueLate {
		return "late"
	}
	return "early"
}

// ErrStopped is reported by Countdown.Err after Stop.
var ErrStopped = errors.New("countdown stopped")

// Display receives countdown frames.
type Display interface {
	Countdown(value int, cue Cue)
	ClearCountdown()
}

// Countdown shows steps..1, one value per tick, then clears the display.
// It runs on its own goroutine once started and is owned by whoever started
// it: Stop cancels it and Done reports when it has finished either way.
type Countdown struct {
	clock   clockwork.Clock
	display Display
	steps   int
	tick    time.Duration

	once    sync.Once
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	err     error
	started bool
}

// NewCountdown prepares a countdown of steps values on clock.
func NewCountdown(clock clockwork.Clock, display Display, steps int, tick time.Duration) *Countdown {
	if steps < 1 {
		steps = 1
	}
	return &Countdown{
		clock:   clock,
		display: display,
		steps:   steps,
		tick:    tick,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the countdown. Calling Start more than once has no effect.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.run(ctx)
}

// Done is closed once the display has been cleared.
func (c *Countdown) Done() <-chan struct{} { return c.done }

// Stop cancels a running countdown. It is safe to call at any time.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Err reports why the countdown ended early, or nil if it ran to zero.
// It is only meaningful after Done is closed.
func (c *Countdown) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)
	defer c.display.ClearCountdown()

	half := c.tick / 2
	for v := c.steps; v >= 1; v-- {
		logging.Trace(slog.Default(), "Countdown: frame", "value", v)
		c.display.Countdown(v, CueEarly)
		if err := c.wait(ctx, half); err != nil {
			c.fail(err)
			return
		}
		c.display.Countdown(v, CueLate)
		if err := c.wait(ctx, c.tick-half); err != nil {
			c.fail(err)
			return
		}
	}
}

func (c *Countdown) fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *Countdown) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := c.clock.NewTimer(d)
	select {
	case <-timer.Chan():
		return nil
	case <-c.stop:
		stopAndDrainTimer(timer)
		return ErrStopped
	case <-ctx.Done():
		stopAndDrainTimer(timer)
		return ctx.Err()
	}
}

// sleep waits d on clock unless ctx ends first.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := clock.NewTimer(d)
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		stopAndDrainTimer(timer)
		return ctx.Err()
	}
}

func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// State is the lifecycle state of a Task
type State int

const (
	// Idle means the task has never been started
	Idle State = iota
	// Running means the timer is armed
	Running
	// Paused means the task was stopped and can be started again
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Body is the work executed on every fire. ctx is cancelled when the task
// is stopped, so a body can tell that its result is no longer wanted.
type Body func(ctx context.Context)

// Task runs a Body periodically on its own goroutine. Fires never overlap
// and ticks that come due while a fire is running are dropped.
type Task struct {
	name   string
	body   Body
	clock  clock.Clock
	logger *zap.Logger

	mu       sync.Mutex
	state    State
	interval time.Duration
	ticker   *clock.Ticker
	cancel   context.CancelFunc

	fireMu sync.Mutex
	wg     sync.WaitGroup
}

func newTask(name string, interval time.Duration, body Body, clk clock.Clock, logger *zap.Logger) *Task {
	return &Task{
		name:     name,
		body:     body,
		clock:    clk,
		interval: interval,
		logger:   logger.With(zap.String("task", name)),
	}
}

// Name returns the task name
func (t *Task) Name() string {
	return t.name
}

// State returns the current lifecycle state
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// Interval returns the configured interval
func (t *Task) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.interval
}

// Start fires the body right away on the task goroutine and then on every
// interval. Starting a running task does nothing.
func (t *Task) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := t.clock.Ticker(t.interval)
	t.ticker = ticker
	t.cancel = cancel
	t.state = Running

	t.wg.Add(1)
	go t.loop(ctx, ticker)

	t.logger.Info("task started", zap.Duration("interval", t.interval))
}

// Stop disarms the timer. A fire in progress runs to completion but sees its
// context cancelled. Stop does not wait for it.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Running {
		return
	}

	t.ticker.Stop()
	t.cancel()
	t.ticker = nil
	t.cancel = nil
	t.state = Paused

	t.logger.Info("task paused")
}

// SetInterval changes the interval. A running task is rearmed without an
// extra fire. Non-positive intervals are ignored.
func (t *Task) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if interval == t.interval {
		return
	}

	t.interval = interval
	if t.state == Running {
		t.ticker.Reset(interval)
	}

	t.logger.Info("task interval changed", zap.Duration("interval", interval))
}

func (t *Task) loop(ctx context.Context, ticker *clock.Ticker) {
	defer t.wg.Done()

	finishedAt := t.fire(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			if tick.Before(finishedAt) {
				// came due while the previous fire was running
				continue
			}
			finishedAt = t.fire(ctx)
		}
	}
}

func (t *Task) fire(ctx context.Context) time.Time {
	t.fireMu.Lock()
	defer t.fireMu.Unlock()

	if ctx.Err() == nil {
		t.run(ctx)
	}
	return t.clock.Now()
}

func (t *Task) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("task body panicked", zap.Any("panic", r))
		}
	}()

	t.body(ctx)
}

// wait blocks until the task goroutines have exited or the timeout passes
func (t *Task) wait(timeout time.Duration) bool {
	return awaitWaitGroup(&t.wg, timeout)
}

package scheduler

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const closeTimeout = 10 * time.Second

// Scheduler owns a set of independently started tasks sharing one interval
type Scheduler struct {
	clock  clock.Clock
	logger *zap.Logger

	mu       sync.Mutex
	interval time.Duration
	tasks    []*Task
}

// Option customizes a Scheduler
type Option func(*Scheduler)

// WithClock replaces the wall clock, mostly for tests
func WithClock(clk clock.Clock) Option {
	return func(s *Scheduler) {
		if clk != nil {
			s.clock = clk
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scheduler whose tasks fire every interval
func New(interval time.Duration, opts ...Option) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	s := &Scheduler{
		clock:    clock.New(),
		logger:   zap.NewNop(),
		interval: interval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "scheduler"))

	return s, nil
}

// NewTask registers an idle task running body
func (s *Scheduler) NewTask(name string, body Body) (*Task, error) {
	if body == nil {
		return nil, ErrNilBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := newTask(name, s.interval, body, s.clock, s.logger)
	s.tasks = append(s.tasks, task)
	return task, nil
}

// Interval returns the interval shared by the tasks
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.interval
}

// SetInterval updates every task. Zero means no change.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	s.interval = interval
	tasks := append([]*Task(nil), s.tasks...)
	s.mu.Unlock()

	for _, task := range tasks {
		task.SetInterval(interval)
	}
}

// Close stops every task and waits for their goroutines to exit
func (s *Scheduler) Close() {
	s.mu.Lock()
	tasks := append([]*Task(nil), s.tasks...)
	s.mu.Unlock()

	for _, task := range tasks {
		task.Stop()
	}
	for _, task := range tasks {
		if !task.wait(closeTimeout) {
			s.logger.Warn("timed out waiting for task to finish", zap.String("task", task.Name()))
		}
	}
}

// awaitWaitGroup returns false if the wait group is not done within timeout
func awaitWaitGroup(wg *sync.WaitGroup, timeout time.Duration) bool {
	doneC := make(chan struct{})

	go func() {
		wg.Wait()
		close(doneC)
	}()

	select {
	case <-doneC:
		return true
	case <-time.After(timeout):
		return false
	}
}

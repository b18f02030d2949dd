package monitor

import (
	"context"
	"time"

	reader "memwatch/internal/memory"
	"memwatch/internal/observable"
	"memwatch/internal/ranking"
	"memwatch/internal/scheduler"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	usageTaskName   = "usage"
	listingTaskName = "listing"

	// DefaultInterval is used when no interval option is given
	DefaultInterval = time.Second
	// MaxIntervalSeconds caps SetInterval at one day
	MaxIntervalSeconds = 24 * 60 * 60
)

// Recorder receives the non-fatal failures of both tasks
type Recorder interface {
	SampleFailed(err error)
	ListingFailed(err error)
}

type noopRecorder struct{}

func (noopRecorder) SampleFailed(error)  {}
func (noopRecorder) ListingFailed(error) {}

type options struct {
	interval time.Duration
	topCount int
	executor observable.Executor
	recorder Recorder
	logger   *zap.Logger
	clock    clock.Clock
}

// Option customizes a Reader
type Option func(*options)

// WithInterval sets the initial sampling and listing interval
func WithInterval(interval time.Duration) Option {
	return func(o *options) { o.interval = interval }
}

// WithTopCount sets how many processes are listed
func WithTopCount(n int) Option {
	return func(o *options) { o.topCount = n }
}

// WithExecutor sets where publishes run, e.g. a UI loop
func WithExecutor(executor observable.Executor) Option {
	return func(o *options) {
		if executor != nil {
			o.executor = executor
		}
	}
}

// WithRecorder sets the failure recorder
func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces the scheduling clock
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// Reader periodically samples memory usage and lists the top memory
// consumers, publishing both through observables.
type Reader struct {
	sampler  *reader.UsageSampler
	lister   ranking.Lister
	topCount int
	executor observable.Executor
	recorder Recorder
	logger   *zap.Logger

	scheduler   *scheduler.Scheduler
	usageTask   *scheduler.Task
	listingTask *scheduler.Task

	usage        *observable.Value[reader.MemorySnapshot]
	topProcesses *observable.Value[[]ranking.ProcessUsage]
	utilization  *observable.Value[float64]
}

// NewReader captures the total memory size and prepares both tasks. Nothing
// runs until Start or StartAdditional is called.
func NewReader(source reader.CounterSource, lister ranking.Lister, opts ...Option) (*Reader, error) {
	if source == nil {
		return nil, reader.ErrNilCounterSource
	}
	if lister == nil {
		return nil, ErrNilLister
	}

	o := options{
		interval: DefaultInterval,
		topCount: ranking.DefaultTopCount,
		executor: observable.Immediate,
		recorder: noopRecorder{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.topCount <= 0 {
		return nil, ErrInvalidTopCount
	}

	logger := o.logger.With(zap.String("component", "memory-reader"))

	sampler, err := reader.NewUsageSampler(source, logger)
	if err != nil {
		return nil, err
	}

	schedulerOpts := []scheduler.Option{scheduler.WithLogger(logger)}
	if o.clock != nil {
		schedulerOpts = append(schedulerOpts, scheduler.WithClock(o.clock))
	}
	sched, err := scheduler.New(o.interval, schedulerOpts...)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		sampler:      sampler,
		lister:       lister,
		topCount:     o.topCount,
		executor:     o.executor,
		recorder:     o.recorder,
		logger:       logger,
		scheduler:    sched,
		usage:        observable.NewValue(reader.MemorySnapshot{}),
		topProcesses: observable.NewValue([]ranking.ProcessUsage{}),
		utilization:  observable.NewValue(0.0),
	}

	r.usageTask, err = sched.NewTask(usageTaskName, r.readUsage)
	if err != nil {
		return nil, err
	}
	r.listingTask, err = sched.NewTask(listingTaskName, r.readProcesses)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Start begins usage sampling
func (r *Reader) Start() {
	r.usageTask.Start()
}

// Stop pauses usage sampling
func (r *Reader) Stop() {
	r.usageTask.Stop()
}

// StartAdditional begins process listing
func (r *Reader) StartAdditional() {
	r.listingTask.Start()
}

// StopAdditional pauses process listing
func (r *Reader) StopAdditional() {
	r.listingTask.Stop()
}

// SetInterval changes the interval of both tasks; 0 is ignored and values
// above MaxIntervalSeconds are clamped
func (r *Reader) SetInterval(seconds int) {
	if seconds <= 0 {
		return
	}
	if seconds > MaxIntervalSeconds {
		seconds = MaxIntervalSeconds
	}
	r.scheduler.SetInterval(time.Duration(seconds) * time.Second)
}

// Interval returns the interval shared by both tasks
func (r *Reader) Interval() time.Duration {
	return r.scheduler.Interval()
}

// UsageState returns the state of the sampling task
func (r *Reader) UsageState() scheduler.State {
	return r.usageTask.State()
}

// ListingState returns the state of the listing task
func (r *Reader) ListingState() scheduler.State {
	return r.listingTask.State()
}

// TotalBytes returns the physical memory size captured at construction
func (r *Reader) TotalBytes() float64 {
	return r.sampler.TotalBytes()
}

// Usage publishes a fresh snapshot on every successful sample
func (r *Reader) Usage() observable.View[reader.MemorySnapshot] {
	return r.usage
}

// TopProcesses publishes the ranked listing on every listing fire. Every
// reader and subscriber receives its own copy of the slice.
func (r *Reader) TopProcesses() observable.View[[]ranking.ProcessUsage] {
	return observable.Cloned(observable.View[[]ranking.ProcessUsage](r.topProcesses))
}

// UtilizationRatio publishes used/total alongside every usage snapshot
func (r *Reader) UtilizationRatio() observable.View[float64] {
	return r.utilization
}

// Close stops both tasks and waits for in-flight fires to return
func (r *Reader) Close() {
	r.scheduler.Close()
}

func (r *Reader) readUsage(ctx context.Context) {
	snapshot, err := r.sampler.Sample()
	if err != nil {
		r.logger.Warn("memory sample failed, keeping previous value", zap.Error(err))
		r.recorder.SampleFailed(err)
		return
	}

	if ctx.Err() != nil {
		return
	}

	ratio := reader.UtilizationRatio(snapshot)
	r.executor.Execute(func() {
		// the task may have been stopped while this publish was queued
		if ctx.Err() != nil {
			return
		}
		r.usage.Publish(snapshot)
		r.utilization.Publish(ratio)
	})
}

func (r *Reader) readProcesses(ctx context.Context) {
	// a stopped task lets the utility finish; the result is dropped below
	processes, err := r.lister.ListTop(context.WithoutCancel(ctx), r.topCount)
	if err != nil {
		r.logger.Debug("process listing failed, publishing empty listing", zap.Error(err))
		r.recorder.ListingFailed(err)
		processes = []ranking.ProcessUsage{}
	}
	if processes == nil {
		processes = []ranking.ProcessUsage{}
	}

	if ctx.Err() != nil {
		return
	}

	r.executor.Execute(func() {
		if ctx.Err() != nil {
			return
		}
		r.topProcesses.Publish(processes)
	})
}

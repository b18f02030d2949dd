package observable

import "sync"

// Executor decides on which goroutine a publish runs. Execute returns once
// fn has completed (or has been dropped).
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a function to the Executor interface
type ExecutorFunc func(fn func())

// Execute calls f(fn)
func (f ExecutorFunc) Execute(fn func()) {
	f(fn)
}

// Immediate runs fn on the calling goroutine
var Immediate Executor = ExecutorFunc(func(fn func()) { fn() })

// EventLoop runs every submitted function on one dedicated goroutine,
// similar to a UI main loop. Functions running on the loop must not call
// Execute on the same loop.
type EventLoop struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewEventLoop starts the loop goroutine
func NewEventLoop() *EventLoop {
	l := &EventLoop{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.run()

	return l
}

func (l *EventLoop) run() {
	defer l.wg.Done()

	for {
		select {
		case task := <-l.tasks:
			task()
		case <-l.done:
			return
		}
	}
}

// Execute hands fn to the loop and waits for it. A panic in fn is re-raised
// on the caller's goroutine. After Close, fn is dropped.
func (l *EventLoop) Execute(fn func()) {
	finished := make(chan struct{})
	var recovered interface{}
	task := func() {
		defer func() {
			recovered = recover()
			close(finished)
		}()
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return
	}

	<-finished
	if recovered != nil {
		panic(recovered)
	}
}

// Close stops the loop and waits for the running function to return
func (l *EventLoop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}

package ranking

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultTopPath is where macOS ships top(1)
	DefaultTopPath = "/usr/bin/top"
	// DefaultListTimeout bounds a single invocation of the ranking utility
	DefaultListTimeout = 5 * time.Second

	waitDelay = 100 * time.Millisecond
)

// TopArgs returns the top(1) arguments for one memory-sorted sample of n rows
func TopArgs(n int) []string {
	return []string{"-l", "1", "-o", "mem", "-n", strconv.Itoa(n), "-stats", "pid,command,mem"}
}

// TopLister runs an external ranking utility and parses its output
type TopLister struct {
	path    string
	args    func(n int) []string
	timeout time.Duration
	logger  *zap.Logger
}

// TopListerOption customizes a TopLister
type TopListerOption func(*TopLister)

// WithArgs replaces the argument builder (defaults to TopArgs)
func WithArgs(args func(n int) []string) TopListerOption {
	return func(l *TopLister) {
		l.args = args
	}
}

// WithLogger sets the logger used for stderr diagnostics
func WithLogger(logger *zap.Logger) TopListerOption {
	return func(l *TopLister) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewTopLister creates a lister invoking the utility found at path
func NewTopLister(path string, timeout time.Duration, opts ...TopListerOption) (*TopLister, error) {
	if path == "" {
		return nil, ErrEmptyUtilityPath
	}
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	l := &TopLister{
		path:    path,
		args:    TopArgs,
		timeout: timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// ListTop spawns the utility and returns at most n parsed rows in emitted order
func (l *TopLister) ListTop(ctx context.Context, n int) ([]ProcessUsage, error) {
	if n <= 0 {
		n = DefaultTopCount
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.path, l.args(n)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return []ProcessUsage{}, &ListError{Kind: ListTimeout, Err: ctx.Err()}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return []ProcessUsage{}, &ListError{Kind: ListUnavailable, Err: err}
		}
		// a non-zero exit still may have printed usable rows
		l.logger.Debug("ranking utility exited with error",
			zap.String("path", l.path),
			zap.Int("exitCode", exitErr.ExitCode()),
			zap.String("stderr", stderr.String()))
	}

	if stdout.Len() == 0 {
		return []ProcessUsage{}, &ListError{Kind: ListEmpty}
	}

	processes := Parse(stdout.String())
	if len(processes) > n {
		processes = processes[:n]
	}
	return processes, nil
}

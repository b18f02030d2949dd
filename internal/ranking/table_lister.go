package ranking

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

type processEntry struct {
	pid  int32
	name string
	rss  uint64
}

// TableLister ranks the OS process table by resident memory. It is used
// where no memory-sorted top(1) is available.
type TableLister struct {
	snapshot func(ctx context.Context) ([]processEntry, error)
	timeout  time.Duration
}

// NewTableLister creates a gopsutil backed lister
func NewTableLister(timeout time.Duration) (*TableLister, error) {
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	return &TableLister{
		snapshot: readProcessTable,
		timeout:  timeout,
	}, nil
}

// ListTop returns the n processes with the largest resident set
func (l *TableLister) ListTop(ctx context.Context, n int) ([]ProcessUsage, error) {
	if n <= 0 {
		n = DefaultTopCount
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	entries, err := l.snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return []ProcessUsage{}, &ListError{Kind: ListTimeout, Err: err}
		}
		return []ProcessUsage{}, &ListError{Kind: ListUnavailable, Err: err}
	}
	if len(entries) == 0 {
		return []ProcessUsage{}, &ListError{Kind: ListEmpty}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].rss > entries[j].rss
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	processes := make([]ProcessUsage, 0, len(entries))
	for _, e := range entries {
		processes = append(processes, ProcessUsage{
			PID:         int(e.pid),
			Command:     e.name,
			MemoryBytes: float64(e.rss),
		})
	}
	return processes, nil
}

func readProcessTable(ctx context.Context) ([]processEntry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]processEntry, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// processes exit between listing and inspection
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		info, err := p.MemoryInfoWithContext(ctx)
		if err != nil || info == nil {
			continue
		}

		entries = append(entries, processEntry{
			pid:  p.Pid,
			name: name,
			rss:  info.RSS,
		})
	}
	return entries, nil
}

// NewLister picks a listing source: "top" runs the external utility, "table"
// reads the process table and "auto" uses top on darwin only.
func NewLister(source string, topPath string, timeout time.Duration, logger *zap.Logger) (Lister, error) {
	if source == "" || source == "auto" {
		source = "table"
		if runtime.GOOS == "darwin" {
			source = "top"
		}
	}

	switch source {
	case "top":
		l, err := NewTopLister(topPath, timeout, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return l, nil
	case "table":
		l, err := NewTableLister(timeout)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, ErrUnknownListingSource
	}
}

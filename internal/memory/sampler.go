package reader

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SampleError is returned when the OS counter query fails.
// The caller keeps its previously published snapshot.
type SampleError struct {
	Reason string
	Err    error
}

func (e *SampleError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("memory sample failed: %s", e.Reason)
	}
	return fmt.Sprintf("memory sample failed: %s: %v", e.Reason, e.Err)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}

// UsageSampler derives snapshots from a CounterSource. The physical memory
// size is captured once at construction.
type UsageSampler struct {
	source CounterSource
	total  float64
	now    func() time.Time
}

// NewUsageSampler queries the total memory once. A failing total query is
// logged and leaves the total at 0; it does not fail construction.
func NewUsageSampler(source CounterSource, logger *zap.Logger) (*UsageSampler, error) {
	if source == nil {
		return nil, ErrNilCounterSource
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	total, err := source.TotalBytes()
	if err != nil {
		logger.Error("failed to query total physical memory", zap.Error(err))
		total = 0
	}

	return &UsageSampler{
		source: source,
		total:  total,
		now:    time.Now,
	}, nil
}

// TotalBytes returns the cached physical memory size
func (s *UsageSampler) TotalBytes() float64 {
	return s.total
}

// Sample reads the current counters and returns a fresh snapshot
func (s *UsageSampler) Sample() (MemorySnapshot, error) {
	counters, err := s.source.Counters()
	if err != nil {
		return MemorySnapshot{}, &SampleError{Reason: "counter query failed", Err: err}
	}

	snapshot := Derive(s.total, counters)
	snapshot.Timestamp = s.now()
	return snapshot, nil
}

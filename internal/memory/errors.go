package reader

import "github.com/pkg/errors"

// ErrNilCounterSource signals that a nil CounterSource has been provided
var ErrNilCounterSource = errors.New("nil counter source")

// ErrHostStatistics signals that the kernel VM statistics call failed
var ErrHostStatistics = errors.New("failed to get VM stats")

// ErrTotalMemory signals that the physical memory size could not be read
var ErrTotalMemory = errors.New("failed to get total memory")

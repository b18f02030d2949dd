//go:build !darwin

package reader

import (
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
)

// DefaultCounterSource maps gopsutil virtual memory stats onto the
// active/wired/compressed breakdown. There is no compressor on these
// platforms, kernel-pinned memory counts as wired.
type DefaultCounterSource struct {
	virtualMemory func() (*mem.VirtualMemoryStat, error)
}

func NewCounterSource() *DefaultCounterSource {
	return &DefaultCounterSource{
		virtualMemory: mem.VirtualMemory,
	}
}

func (r *DefaultCounterSource) TotalBytes() (float64, error) {
	vm, err := r.virtualMemory()
	if err != nil {
		return 0, errors.Wrap(ErrTotalMemory, err.Error())
	}
	return float64(vm.Total), nil
}

func (r *DefaultCounterSource) Counters() (RawCounters, error) {
	vm, err := r.virtualMemory()
	if err != nil {
		return RawCounters{}, errors.Wrap(ErrHostStatistics, err.Error())
	}

	counters := RawCounters{
		Active: float64(vm.Active),
		Wired:  float64(vm.Wired + vm.Sunreclaim + vm.PageTables),
	}

	// windows only reports totals
	if counters.Active == 0 && counters.Wired == 0 {
		counters.Active = float64(vm.Used)
	}

	return counters, nil
}

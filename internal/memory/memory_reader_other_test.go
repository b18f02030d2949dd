//go:build !darwin

package reader

import (
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCounterSource_MapsBreakdown(t *testing.T) {
	t.Parallel()

	source := &DefaultCounterSource{
		virtualMemory: func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{
				Total:      8 * gib,
				Used:       5 * gib,
				Active:     3 * gib,
				Sunreclaim: 100,
				PageTables: 20,
			}, nil
		},
	}

	total, err := source.TotalBytes()
	require.NoError(t, err)
	assert.Equal(t, float64(8*gib), total)

	counters, err := source.Counters()
	require.NoError(t, err)
	assert.Equal(t, float64(3*gib), counters.Active)
	assert.Equal(t, float64(120), counters.Wired)
	assert.Zero(t, counters.Compressed)
}

func TestDefaultCounterSource_FallsBackToUsed(t *testing.T) {
	t.Parallel()

	source := &DefaultCounterSource{
		virtualMemory: func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 8 * gib, Used: 5 * gib}, nil
		},
	}

	counters, err := source.Counters()
	require.NoError(t, err)
	assert.Equal(t, float64(5*gib), counters.Active)
}

func TestDefaultCounterSource_Errors(t *testing.T) {
	t.Parallel()

	source := &DefaultCounterSource{
		virtualMemory: func() (*mem.VirtualMemoryStat, error) {
			return nil, errors.New("no /proc")
		},
	}

	_, err := source.TotalBytes()
	assert.True(t, errors.Is(err, ErrTotalMemory))

	_, err = source.Counters()
	assert.True(t, errors.Is(err, ErrHostStatistics))
}

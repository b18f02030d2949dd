package ranking

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLister_RanksByResidentMemory(t *testing.T) {
	t.Parallel()

	l, err := NewTableLister(time.Second)
	require.NoError(t, err)
	l.snapshot = func(ctx context.Context) ([]processEntry, error) {
		return []processEntry{
			{pid: 1, name: "launchd", rss: 10 * mib},
			{pid: 2, name: "postgres", rss: 900 * mib},
			{pid: 3, name: "chrome", rss: 1200 * mib},
			{pid: 4, name: "bash", rss: 4 * mib},
		}, nil
	}

	processes, err := l.ListTop(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []ProcessUsage{
		{PID: 3, Command: "chrome", MemoryBytes: 1200 * mib},
		{PID: 2, Command: "postgres", MemoryBytes: 900 * mib},
	}, processes)
}

func TestTableLister_Failures(t *testing.T) {
	t.Parallel()

	l, _ := NewTableLister(time.Second)
	l.snapshot = func(ctx context.Context) ([]processEntry, error) {
		return nil, errors.New("permission denied")
	}
	processes, err := l.ListTop(context.Background(), 5)
	assertListError(t, err, ListUnavailable)
	assert.NotNil(t, processes)

	l.snapshot = func(ctx context.Context) ([]processEntry, error) {
		return nil, nil
	}
	processes, err = l.ListTop(context.Background(), 5)
	assertListError(t, err, ListEmpty)
	assert.NotNil(t, processes)
}

func TestTableLister_ReadsRealProcessTable(t *testing.T) {
	t.Parallel()

	l, err := NewTableLister(10 * time.Second)
	require.NoError(t, err)

	processes, err := l.ListTop(context.Background(), 3)

	require.NoError(t, err)
	require.NotEmpty(t, processes)
	assert.LessOrEqual(t, len(processes), 3)
	for i := 1; i < len(processes); i++ {
		assert.GreaterOrEqual(t, processes[i-1].MemoryBytes, processes[i].MemoryBytes)
	}
}

func TestNewLister(t *testing.T) {
	t.Parallel()

	l, err := NewLister("top", DefaultTopPath, time.Second, nil)
	require.NoError(t, err)
	assert.IsType(t, &TopLister{}, l)

	l, err = NewLister("table", DefaultTopPath, time.Second, nil)
	require.NoError(t, err)
	assert.IsType(t, &TableLister{}, l)

	l, err = NewLister("auto", DefaultTopPath, time.Second, nil)
	require.NoError(t, err)
	if runtime.GOOS == "darwin" {
		assert.IsType(t, &TopLister{}, l)
	} else {
		assert.IsType(t, &TableLister{}, l)
	}

	l, err = NewLister("ps", DefaultTopPath, time.Second, nil)
	assert.Equal(t, ErrUnknownListingSource, err)
	assert.Nil(t, l)
}

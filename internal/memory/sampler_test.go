package reader

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type counterSourceStub struct {
	total       float64
	totalErr    error
	counters    RawCounters
	countersErr error
	totalCalls  int
}

func (s *counterSourceStub) TotalBytes() (float64, error) {
	s.totalCalls++
	return s.total, s.totalErr
}

func (s *counterSourceStub) Counters() (RawCounters, error) {
	return s.counters, s.countersErr
}

const gib = 1 << 30

func TestNewUsageSampler_NilSourceShouldErr(t *testing.T) {
	t.Parallel()

	sampler, err := NewUsageSampler(nil, nil)

	assert.Equal(t, ErrNilCounterSource, err)
	assert.Nil(t, sampler)
}

func TestNewUsageSampler_TotalQueriedOnce(t *testing.T) {
	t.Parallel()

	source := &counterSourceStub{total: 16 * gib, counters: RawCounters{Active: gib}}
	sampler, err := NewUsageSampler(source, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = sampler.Sample()
		require.NoError(t, err)
	}

	assert.Equal(t, 1, source.totalCalls)
	assert.Equal(t, float64(16*gib), sampler.TotalBytes())
}

func TestNewUsageSampler_TotalFailureIsLoggedNotFatal(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	source := &counterSourceStub{totalErr: errors.New("kern failure"), counters: RawCounters{Active: gib}}

	sampler, err := NewUsageSampler(source, zap.New(core))
	require.NoError(t, err)
	assert.Zero(t, sampler.TotalBytes())
	assert.Equal(t, 1, logs.Len())

	snapshot, err := sampler.Sample()
	require.NoError(t, err)
	assert.Zero(t, UtilizationRatio(snapshot))
	assert.InDelta(t, snapshot.Total, snapshot.Used+snapshot.Free, 1e-6)
}

func TestUsageSampler_Sample(t *testing.T) {
	t.Parallel()

	t.Run("sums active wired and compressed", func(t *testing.T) {
		t.Parallel()

		source := &counterSourceStub{
			total:    16 * gib,
			counters: RawCounters{Active: 4 * gib, Wired: 2 * gib, Compressed: gib},
		}
		sampler, _ := NewUsageSampler(source, nil)

		snapshot, err := sampler.Sample()
		require.NoError(t, err)

		assert.Equal(t, float64(16*gib), snapshot.Total)
		assert.Equal(t, float64(7*gib), snapshot.Used)
		assert.Equal(t, float64(9*gib), snapshot.Free)
		assert.False(t, snapshot.Timestamp.IsZero())
	})
	t.Run("counter failure returns SampleError", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("host_statistics64 failed")
		source := &counterSourceStub{total: 16 * gib, countersErr: cause}
		sampler, _ := NewUsageSampler(source, nil)

		snapshot, err := sampler.Sample()

		var sampleErr *SampleError
		require.True(t, errors.As(err, &sampleErr))
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "host_statistics64 failed")
		assert.Equal(t, MemorySnapshot{}, snapshot)
	})
}

func TestDerive_UsedPlusFreeEqualsTotal(t *testing.T) {
	t.Parallel()

	totals := []float64{8 * gib, 16*gib + 12345, 1}
	counters := []RawCounters{
		{},
		{Active: 1.5 * gib, Wired: 0.25 * gib, Compressed: 0.125 * gib},
		{Active: 3*gib + 7, Wired: 11, Compressed: 13},
		{Active: 40 * gib},
	}

	for _, total := range totals {
		for _, c := range counters {
			snapshot := Derive(total, c)
			assert.InDelta(t, 0, (snapshot.Used+snapshot.Free-snapshot.Total)/snapshot.Total, 1e-6)
			assert.GreaterOrEqual(t, snapshot.Free, 0.0)
		}
	}
}

func TestUtilizationRatio(t *testing.T) {
	t.Parallel()

	snapshot := Derive(16*gib, RawCounters{Active: 4 * gib})
	assert.Equal(t, snapshot.Used/snapshot.Total, UtilizationRatio(snapshot))
	assert.Equal(t, 0.25, UtilizationRatio(snapshot))

	assert.Zero(t, UtilizationRatio(MemorySnapshot{}))
	assert.False(t, math.IsNaN(UtilizationRatio(Derive(0, RawCounters{Active: gib}))))
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", FormatBytes(0))
	assert.Equal(t, "1000", FormatBytes(1000))
	assert.Equal(t, "1", FormatBytes(1))
	assert.Equal(t, "1023", FormatBytes(1023.4))
	assert.Equal(t, "1Ki", FormatBytes(1023.6))
	assert.Equal(t, "1Ki", FormatBytes(1024))
	assert.Equal(t, "4Ki", FormatBytes(4096))
	assert.Equal(t, "512Mi", FormatBytes(512*1024*1024))
	assert.Equal(t, "1536Mi", FormatBytes(1.5*gib))
	assert.Equal(t, "16Gi", FormatBytes(16*gib))
}

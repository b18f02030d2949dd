package monitor

import (
	"testing"

	"memwatch/internal/config"
	"memwatch/internal/scheduler"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ListingSource = config.ListingTable
	cfg.UpdateInterval = 2
	cfg.TopCount = 3

	r, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, cfg.Interval(), r.Interval())
	assert.Equal(t, 3, r.topCount)
	assert.Equal(t, scheduler.Idle, r.UsageState())
	assert.Equal(t, scheduler.Idle, r.ListingState())
}

func TestNewFromConfig_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TopCount = 0

	r, err := NewFromConfig(cfg, nil)
	assert.True(t, errors.Is(err, config.ErrInvalidTopCount))
	assert.Nil(t, r)
}

package monitor

import (
	"memwatch/internal/config"
	reader "memwatch/internal/memory"
	"memwatch/internal/ranking"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewFromConfig wires the host counter source and the configured process
// lister into a Reader. opts are applied after the config-derived options.
func NewFromConfig(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Reader, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	lister, err := ranking.NewLister(cfg.ResolvedListingSource(), cfg.TopPath, cfg.ListTimeout, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create process lister")
	}

	logger.Info("memory reader configured",
		zap.Int("interval_seconds", cfg.UpdateInterval),
		zap.Int("top_count", cfg.TopCount),
		zap.String("listing_source", cfg.ResolvedListingSource()),
		zap.Duration("list_timeout", cfg.ListTimeout),
	)

	base := []Option{
		WithInterval(cfg.Interval()),
		WithTopCount(cfg.TopCount),
		WithLogger(logger),
	}
	return NewReader(reader.NewCounterSource(), lister, append(base, opts...)...)
}

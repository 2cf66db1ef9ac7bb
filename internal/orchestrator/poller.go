package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller triggers a batch run on a fixed interval, standing in for the
// external timer that drives job processing in production.
type Poller struct {
	orch     *Orchestrator
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller constructs a Poller.
func NewPoller(orch *Orchestrator, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{orch: orch, interval: interval, logger: logger}
}

// Run blocks, launching a default batch run every interval until the context
// finishes. Runs never overlap; a slow batch simply delays the next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := p.orch.Run(ctx, Request{})
			if err != nil {
				p.logger.Error("poll run failed", zap.Error(err))
				continue
			}
			if summary.Processed > 0 {
				p.logger.Info("poll run processed jobs",
					zap.Int("processed", summary.Processed),
					zap.Int("completed", summary.Completed),
					zap.Int("failed", summary.Failed),
				)
			}
		}
	}
}

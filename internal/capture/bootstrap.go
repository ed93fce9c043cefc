package capture

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/repository"
)

// Bootstrap puts the engine into its startup state. With reset enabled the
// recording flag is turned off and the log list emptied; either way the
// mirror and the indicator are seeded from the stored flag.
type Bootstrap struct {
	reset     bool
	repo      repository.RecordingRepository
	queue     *Queue
	state     *RecordingState
	indicator Indicator
	logger    *zap.Logger
}

func NewBootstrap(
	cfg *config.Config,
	repo repository.RecordingRepository,
	queue *Queue,
	state *RecordingState,
	indicator Indicator,
	logger *zap.Logger,
) *Bootstrap {
	return &Bootstrap{
		reset:     cfg.Capture.ResetOnStart,
		repo:      repo,
		queue:     queue,
		state:     state,
		indicator: indicator,
		logger:    logger.Named("bootstrap"),
	}
}

// Run expects the queue worker to be running
func (b *Bootstrap) Run(ctx context.Context) error {
	if b.reset {
		if err := b.repo.SetRecording(ctx, false); err != nil {
			return fmt.Errorf("failed to reset recording flag: %w", err)
		}
		if err := b.queue.Clear(); err != nil {
			return fmt.Errorf("failed to reset logs: %w", err)
		}
		if err := b.queue.Flush(ctx); err != nil {
			return fmt.Errorf("failed to reset logs: %w", err)
		}
	}

	recording, err := b.state.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recording flag: %w", err)
	}
	SyncIndicator(b.indicator, recording)

	b.logger.Info("Capture engine ready",
		zap.Bool("reset", b.reset),
		zap.Bool("recording", recording),
	)
	return nil
}

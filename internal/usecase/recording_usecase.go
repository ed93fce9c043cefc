package usecase

import (
	"context"

	"go.uber.org/zap"

	"traffic-recorder/internal/capture"
	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/domain/repository"
)

type RecordingUsecase interface {
	// IsRecording reads the persisted flag
	IsRecording(ctx context.Context) (bool, error)

	// SetRecording persists the flag; observers pick it up from the change stream
	SetRecording(ctx context.Context, recording bool) error

	// Indicator returns the current badge
	Indicator() entity.IndicatorState
}

type recordingUsecase struct {
	repo      repository.RecordingRepository
	state     *capture.RecordingState
	indicator *capture.BadgeIndicator
	logger    *zap.Logger
}

func NewRecordingUsecase(
	repo repository.RecordingRepository,
	state *capture.RecordingState,
	indicator *capture.BadgeIndicator,
	logger *zap.Logger,
) RecordingUsecase {
	return &recordingUsecase{
		repo:      repo,
		state:     state,
		indicator: indicator,
		logger:    logger,
	}
}

func (u *recordingUsecase) IsRecording(ctx context.Context) (bool, error) {
	recording, err := u.repo.IsRecording(ctx)
	if err != nil {
		u.logger.Error("Failed to read recording flag", zap.Error(err))
		return false, err
	}
	return recording, nil
}

func (u *recordingUsecase) SetRecording(ctx context.Context, recording bool) error {
	u.logger.Info("Setting recording flag", zap.Bool("recording", recording))

	if err := u.repo.SetRecording(ctx, recording); err != nil {
		u.logger.Error("Failed to write recording flag", zap.Error(err))
		return err
	}

	// mirrored now; the watcher repeats this when the change arrives
	u.state.Set(recording)
	capture.SyncIndicator(u.indicator, recording)
	return nil
}

func (u *recordingUsecase) Indicator() entity.IndicatorState {
	return u.indicator.State()
}

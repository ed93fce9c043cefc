package capture

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/domain/repository"
)

// Watcher follows the store's change stream and keeps the recording mirror
// and the indicator in step with the isRecording key.
type Watcher struct {
	store     repository.KVStore
	repo      repository.RecordingRepository
	state     *RecordingState
	indicator Indicator
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatcher(
	store repository.KVStore,
	repo repository.RecordingRepository,
	state *RecordingState,
	indicator Indicator,
	logger *zap.Logger,
) *Watcher {
	return &Watcher{
		store:     store,
		repo:      repo,
		state:     state,
		indicator: indicator,
		logger:    logger.Named("watcher"),
	}
}

// Start subscribes before returning so no change committed afterwards is missed
func (w *Watcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	changes, err := w.store.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to store changes: %w", err)
	}
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for change := range changes {
			w.handle(change)
		}
	}()
	return nil
}

func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) handle(change entity.StoreChange) {
	if change.Key != repository.RecordingKey {
		return
	}

	recording, err := w.repo.Decode(change.NewValue)
	if err != nil {
		w.logger.Warn("Ignoring undecodable recording flag", zap.Error(err))
		return
	}

	w.state.Set(recording)
	SyncIndicator(w.indicator, recording)
	w.logger.Info("Recording state changed", zap.Bool("recording", recording))
}

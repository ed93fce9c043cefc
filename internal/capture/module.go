package capture

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("capture",
	fx.Provide(
		NewTracker,
		NewQueue,
		NewRecordingState,
		NewBadgeIndicator,
		provideIndicator,
		NewWatcher,
		NewIngestor,
		NewBootstrap,
	),
	fx.Invoke(registerLifecycle),
)

func provideIndicator(badge *BadgeIndicator) Indicator {
	return badge
}

func registerLifecycle(
	lc fx.Lifecycle,
	watcher *Watcher,
	queue *Queue,
	tracker *Tracker,
	bootstrap *Bootstrap,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			queue.Start(ctx)
			return bootstrap.Run(ctx)
		},
		OnStop: func(ctx context.Context) error {
			tracker.Close()
			err := queue.Stop(ctx)
			watcher.Stop()
			if err != nil {
				logger.Warn("Capture engine stopped with pending updates", zap.Error(err))
			}
			return nil
		},
	})
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"traffic-recorder/internal/capture"
	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/domain/repository"
)

var ErrLogNotFound = errors.New("log not found")

type LogUsecase interface {
	// ListLogs returns up to limit records, newest first; limit <= 0 means all
	ListLogs(ctx context.Context, limit int) ([]entity.LogRecord, error)

	// GetLog returns the stored record with the given correlation id
	GetLog(ctx context.Context, id string) (*entity.LogRecord, error)

	// ClearLogs empties the list through the persistence queue and waits for it
	ClearLogs(ctx context.Context) error

	// WatchLogs streams the full list after every committed change until ctx ends
	WatchLogs(ctx context.Context) (<-chan []entity.LogRecord, error)
}

type logUsecase struct {
	repo   repository.LogRepository
	store  repository.KVStore
	queue  *capture.Queue
	logger *zap.Logger
}

func NewLogUsecase(
	repo repository.LogRepository,
	store repository.KVStore,
	queue *capture.Queue,
	logger *zap.Logger,
) LogUsecase {
	return &logUsecase{
		repo:   repo,
		store:  store,
		queue:  queue,
		logger: logger,
	}
}

func (u *logUsecase) ListLogs(ctx context.Context, limit int) ([]entity.LogRecord, error) {
	logs, err := u.repo.Load(ctx)
	if err != nil {
		u.logger.Error("Failed to load logs", zap.Error(err))
		return nil, err
	}

	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (u *logUsecase) GetLog(ctx context.Context, id string) (*entity.LogRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}

	logs, err := u.repo.Load(ctx)
	if err != nil {
		u.logger.Error("Failed to load logs", zap.Error(err))
		return nil, err
	}

	for i := range logs {
		if logs[i].ID == id {
			return &logs[i], nil
		}
	}
	return nil, ErrLogNotFound
}

func (u *logUsecase) ClearLogs(ctx context.Context) error {
	u.logger.Info("Clearing logs")

	if err := u.queue.Clear(); err != nil {
		return fmt.Errorf("failed to queue clear: %w", err)
	}
	if err := u.queue.Flush(ctx); err != nil {
		return fmt.Errorf("failed to wait for clear: %w", err)
	}
	return nil
}

func (u *logUsecase) WatchLogs(ctx context.Context) (<-chan []entity.LogRecord, error) {
	changes, err := u.store.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to log changes: %w", err)
	}

	out := make(chan []entity.LogRecord, 1)
	go func() {
		defer close(out)
		for change := range changes {
			if change.Key != repository.LogsKey {
				continue
			}

			logs, err := u.repo.Decode(change.NewValue)
			if err != nil {
				u.logger.Warn("Skipping undecodable log list", zap.Error(err))
				continue
			}

			select {
			case out <- logs:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/domain/repository"
)

type logRepository struct {
	store  repository.KVStore
	codec  Codec
	logger *zap.Logger
}

// NewLogRepository creates the repository for the durable log list
func NewLogRepository(store repository.KVStore, codec Codec, logger *zap.Logger) repository.LogRepository {
	return &logRepository{
		store:  store,
		codec:  codec,
		logger: logger,
	}
}

func (r *logRepository) Load(ctx context.Context) ([]entity.LogRecord, error) {
	data, err := r.store.Get(ctx, repository.LogsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}
	return r.Decode(data)
}

func (r *logRepository) Save(ctx context.Context, logs []entity.LogRecord) error {
	if logs == nil {
		logs = []entity.LogRecord{}
	}

	data, err := r.codec.Encode(logs)
	if err != nil {
		return fmt.Errorf("failed to encode logs: %w", err)
	}

	if err := r.store.Set(ctx, repository.LogsKey, data); err != nil {
		r.logger.Error("Failed to save logs",
			zap.Int("count", len(logs)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save logs: %w", err)
	}

	return nil
}

func (r *logRepository) Decode(data []byte) ([]entity.LogRecord, error) {
	if len(data) == 0 {
		return []entity.LogRecord{}, nil
	}

	var logs []entity.LogRecord
	if err := r.codec.Decode(data, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}
	if logs == nil {
		logs = []entity.LogRecord{}
	}
	return logs, nil
}

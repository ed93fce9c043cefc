package repository

import (
	"context"

	"traffic-recorder/internal/domain/entity"
)

const (
	// LogsKey holds the newest-first list of captured log records
	LogsKey = "logs"
	// RecordingKey holds the boolean recording flag
	RecordingKey = "isRecording"
)

// KVStore is the durable key-value store shared by the engine and its observers.
// Get returns (nil, nil) for a missing key. Every committed Set is announced on
// the channels returned by Subscribe, which are closed when ctx is done.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Subscribe(ctx context.Context) (<-chan entity.StoreChange, error)
	Close() error
}

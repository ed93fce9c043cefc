package repository

import (
	"context"

	"traffic-recorder/internal/domain/entity"
)

type LogRepository interface {
	// Load reads the full newest-first log list; an absent key yields an empty list
	Load(ctx context.Context) ([]entity.LogRecord, error)

	// Save replaces the stored log list
	Save(ctx context.Context, logs []entity.LogRecord) error

	// Decode parses a raw value seen on the change stream
	Decode(data []byte) ([]entity.LogRecord, error)
}

type RecordingRepository interface {
	// IsRecording reads the flag; an absent key means false
	IsRecording(ctx context.Context) (bool, error)

	// SetRecording writes the flag
	SetRecording(ctx context.Context, recording bool) error

	// Decode parses a raw value seen on the change stream
	Decode(data []byte) (bool, error)
}

package repository

import (
	"context"
	"fmt"

	"traffic-recorder/internal/domain/repository"
)

type recordingRepository struct {
	store repository.KVStore
	codec Codec
}

func NewRecordingRepository(store repository.KVStore, codec Codec) repository.RecordingRepository {
	return &recordingRepository{
		store: store,
		codec: codec,
	}
}

func (r *recordingRepository) IsRecording(ctx context.Context) (bool, error) {
	data, err := r.store.Get(ctx, repository.RecordingKey)
	if err != nil {
		return false, fmt.Errorf("failed to read recording flag: %w", err)
	}
	return r.Decode(data)
}

func (r *recordingRepository) SetRecording(ctx context.Context, recording bool) error {
	data, err := r.codec.Encode(recording)
	if err != nil {
		return fmt.Errorf("failed to encode recording flag: %w", err)
	}
	if err := r.store.Set(ctx, repository.RecordingKey, data); err != nil {
		return fmt.Errorf("failed to write recording flag: %w", err)
	}
	return nil
}

func (r *recordingRepository) Decode(data []byte) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}

	var recording bool
	if err := r.codec.Decode(data, &recording); err != nil {
		return false, fmt.Errorf("failed to decode recording flag: %w", err)
	}
	return recording, nil
}

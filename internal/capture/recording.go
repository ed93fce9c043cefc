package capture

import (
	"context"
	"sync/atomic"

	"traffic-recorder/internal/domain/repository"
)

// RecordingState mirrors the persisted recording flag for the hot path
type RecordingState struct {
	repo repository.RecordingRepository
	on   atomic.Bool
}

func NewRecordingState(repo repository.RecordingRepository) *RecordingState {
	return &RecordingState{repo: repo}
}

func (r *RecordingState) IsRecording() bool {
	return r.on.Load()
}

// Set updates the mirror only; the store is written by whoever flipped the flag
func (r *RecordingState) Set(recording bool) {
	r.on.Store(recording)
	if recording {
		recordingEnabled.Set(1)
	} else {
		recordingEnabled.Set(0)
	}
}

// Load seeds the mirror from the store
func (r *RecordingState) Load(ctx context.Context) (bool, error) {
	recording, err := r.repo.IsRecording(ctx)
	if err != nil {
		return false, err
	}
	r.Set(recording)
	return recording, nil
}

package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/entity"
	domainrepo "traffic-recorder/internal/domain/repository"
)

func TestSyncIndicator(t *testing.T) {
	badge := NewBadgeIndicator()

	SyncIndicator(badge, true)
	assert.Equal(t, entity.IndicatorState{Text: "REC", Color: "#ef4444"}, badge.State())

	SyncIndicator(badge, false)
	assert.Equal(t, entity.IndicatorState{Text: "", Color: "#ef4444"}, badge.State())
}

func TestRecordingState_Load(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := testContext(t)

	recording, err := e.state.Load(ctx)
	require.NoError(t, err)
	assert.False(t, recording)

	require.NoError(t, e.recording.SetRecording(ctx, true))
	recording, err = e.state.Load(ctx)
	require.NoError(t, err)
	assert.True(t, recording)
	assert.True(t, e.state.IsRecording())
}

func TestWatcher_FollowsRecordingFlag(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := testContext(t)

	watcher := NewWatcher(e.kv, e.recording, e.state, e.indicator, zap.NewNop())
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, e.recording.SetRecording(ctx, true))
	assert.Eventually(t, func() bool {
		return e.state.IsRecording() && e.indicator.State().Text == RecordingBadgeText
	}, time.Second, 5*time.Millisecond)

	// unrelated keys are ignored
	require.NoError(t, e.kv.Set(ctx, domainrepo.LogsKey, []byte(`[]`)))

	require.NoError(t, e.recording.SetRecording(ctx, false))
	assert.Eventually(t, func() bool {
		return !e.state.IsRecording() && e.indicator.State().Text == ""
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, RecordingBadgeColor, e.indicator.State().Color)
}

func TestBootstrap_Reset(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := testContext(t)

	require.NoError(t, e.recording.SetRecording(ctx, true))
	require.NoError(t, e.logs.Save(ctx, []entity.LogRecord{{ID: "old"}}))

	b := NewBootstrap(e.cfg, e.recording, e.queue, e.state, e.indicator, zap.NewNop())
	require.NoError(t, b.Run(ctx))

	recording, err := e.recording.IsRecording(ctx)
	require.NoError(t, err)
	assert.False(t, recording)
	assert.False(t, e.state.IsRecording())
	assert.Empty(t, e.stored(t))
	assert.Equal(t, "", e.indicator.State().Text)
}

func TestBootstrap_KeepsStateWithoutReset(t *testing.T) {
	e := newTestEngine(t, func(cfg *config.Config) { cfg.Capture.ResetOnStart = false })
	ctx := testContext(t)

	require.NoError(t, e.recording.SetRecording(ctx, true))
	require.NoError(t, e.logs.Save(ctx, []entity.LogRecord{{ID: "kept"}}))

	b := NewBootstrap(e.cfg, e.recording, e.queue, e.state, e.indicator, zap.NewNop())
	require.NoError(t, b.Run(ctx))

	assert.True(t, e.state.IsRecording())
	assert.Equal(t, RecordingBadgeText, e.indicator.State().Text)
	logs := e.stored(t)
	require.Len(t, logs, 1)
	assert.Equal(t, "kept", logs[0].ID)
}

func TestBootstrap_FailsWhenQueueClosed(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.queue.Stop(context.Background()))

	b := NewBootstrap(e.cfg, e.recording, e.queue, e.state, e.indicator, zap.NewNop())
	assert.ErrorIs(t, b.Run(testContext(t)), ErrQueueClosed)
}

package capture

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/entity"
	domainrepo "traffic-recorder/internal/domain/repository"
	"traffic-recorder/internal/infrastructure/repository"
	"traffic-recorder/internal/infrastructure/store"
)

var errStoreDown = errors.New("store down")

// flakyLogRepo fails the next N saves
type flakyLogRepo struct {
	domainrepo.LogRepository
	failSaves atomic.Int32
}

func (f *flakyLogRepo) Save(ctx context.Context, logs []entity.LogRecord) error {
	if f.failSaves.Load() > 0 {
		f.failSaves.Add(-1)
		return errStoreDown
	}
	return f.LogRepository.Save(ctx, logs)
}

type testEngine struct {
	cfg       *config.Config
	kv        domainrepo.KVStore
	logs      *flakyLogRepo
	recording domainrepo.RecordingRepository
	tracker   *Tracker
	queue     *Queue
	state     *RecordingState
	indicator *BadgeIndicator
	ingestor  *Ingestor
}

func newTestEngine(t *testing.T, configure func(cfg *config.Config)) *testEngine {
	t.Helper()

	cfg := config.Default()
	if configure != nil {
		configure(cfg)
	}

	logger := zap.NewNop()
	kv := store.NewMemoryStore(logger)
	codec, err := repository.NewCodec(cfg)
	require.NoError(t, err)

	logs := &flakyLogRepo{LogRepository: repository.NewLogRepository(kv, codec, logger)}
	recording := repository.NewRecordingRepository(kv, codec)

	e := &testEngine{
		cfg:       cfg,
		kv:        kv,
		logs:      logs,
		recording: recording,
		tracker:   NewTracker(logger),
		queue:     NewQueue(logs, cfg, logger),
		state:     NewRecordingState(recording),
		indicator: NewBadgeIndicator(),
	}
	e.ingestor = NewIngestor(cfg, e.tracker, e.queue, e.state, logger)

	e.queue.Start(context.Background())
	t.Cleanup(func() {
		e.tracker.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.queue.Stop(ctx)
		_ = kv.Close()
	})
	return e
}

func (e *testEngine) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.queue.Flush(ctx))
}

func (e *testEngine) stored(t *testing.T) []entity.LogRecord {
	t.Helper()
	e.flush(t)
	logs, err := e.logs.Load(context.Background())
	require.NoError(t, err)
	return logs
}

func initiation(id, url, typ string) entity.InitiationEvent {
	return entity.InitiationEvent{ID: id, URL: url, Method: "GET", Type: typ}
}

package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/domain/repository"
)

var (
	ErrEmptyID     = errors.New("log update has no id")
	ErrQueueClosed = errors.New("persistence queue is closed")
)

type opKind int

const (
	opMerge opKind = iota
	opClear
	opBarrier
)

type queueOp struct {
	kind   opKind
	update *entity.LogUpdate
	done   chan struct{} // closed once a barrier is reached
}

// Queue serializes every write of the log list through one worker goroutine.
// Submissions never block; they are applied strictly in arrival order.
type Queue struct {
	repo    repository.LogRepository
	maxLogs int
	logger  *zap.Logger

	mu      sync.Mutex
	pending []queueOp
	closed  bool
	wake    chan struct{}

	started bool
	stopped chan struct{}
	cancel  context.CancelFunc
}

func NewQueue(repo repository.LogRepository, cfg *config.Config, logger *zap.Logger) *Queue {
	maxLogs := cfg.Capture.MaxLogs
	if maxLogs <= 0 {
		maxLogs = config.DefaultMaxLogs
	}
	return &Queue{
		repo:    repo,
		maxLogs: maxLogs,
		logger:  logger.Named("queue"),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Submit hands the update to the queue. The caller must not modify it afterwards.
func (q *Queue) Submit(update *entity.LogUpdate) error {
	if update == nil || update.ID == "" {
		return ErrEmptyID
	}
	return q.enqueue(queueOp{kind: opMerge, update: update})
}

// Clear enqueues a write of the empty list
func (q *Queue) Clear() error {
	return q.enqueue(queueOp{kind: opClear})
}

// Flush blocks until everything submitted before the call has been applied
func (q *Queue) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if err := q.enqueue(queueOp{kind: opBarrier, done: done}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len reports how many operations are waiting
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) enqueue(op queueOp) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, op)
	queueDepth.Set(float64(len(q.pending)))
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Start launches the drain worker. The worker outlives ctx only until Stop.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true

	ctx, q.cancel = context.WithCancel(context.WithoutCancel(ctx))
	go q.run(ctx)
	q.logger.Info("Persistence queue started", zap.Int("max_logs", q.maxLogs))
}

// Stop refuses new submissions and waits for the queued ones to drain.
// If ctx ends first the remaining items are abandoned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case q.wake <- struct{}{}:
	default:
	}

	select {
	case <-q.stopped:
		q.logger.Info("Persistence queue stopped")
		return nil
	case <-ctx.Done():
		q.cancel()
		<-q.stopped
		q.logger.Warn("Persistence queue stopped before draining", zap.Int("abandoned", q.Len()))
		return ctx.Err()
	}
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.stopped)

	for {
		op, ok, closed := q.next()
		if !ok {
			if closed {
				return
			}
			select {
			case <-q.wake:
				continue
			case <-ctx.Done():
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		q.apply(ctx, op)
	}
}

func (q *Queue) next() (queueOp, bool, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return queueOp{}, false, q.closed
	}
	op := q.pending[0]
	q.pending[0] = queueOp{}
	q.pending = q.pending[1:]
	queueDepth.Set(float64(len(q.pending)))
	return op, true, false
}

func (q *Queue) apply(ctx context.Context, op queueOp) {
	switch op.kind {
	case opBarrier:
		close(op.done)
		return
	case opClear:
		start := time.Now()
		err := q.repo.Save(ctx, []entity.LogRecord{})
		drainCycleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			storeWritesTotal.WithLabelValues("error").Inc()
			q.logger.Error("Failed to clear logs", zap.Error(err))
			return
		}
		storeWritesTotal.WithLabelValues("ok").Inc()
		q.logger.Debug("Logs cleared")
		return
	}

	start := time.Now()
	defer func() {
		drainCycleDuration.Observe(time.Since(start).Seconds())
	}()

	logs, err := q.repo.Load(ctx)
	if err != nil {
		storeWritesTotal.WithLabelValues("error").Inc()
		q.logger.Error("Failed to load logs, dropping update",
			zap.String("request_id", op.update.ID),
			zap.Error(err),
		)
		return
	}

	logs = mergeLog(logs, op.update, q.maxLogs)

	if err := q.repo.Save(ctx, logs); err != nil {
		storeWritesTotal.WithLabelValues("error").Inc()
		q.logger.Error("Failed to save logs, dropping update",
			zap.String("request_id", op.update.ID),
			zap.Error(err),
		)
		return
	}
	storeWritesTotal.WithLabelValues("ok").Inc()
}

// mergeLog folds update into the newest-first list. A known id is merged in
// place; an unknown one is prepended and the list cut back to maxLogs.
func mergeLog(logs []entity.LogRecord, update *entity.LogUpdate, maxLogs int) []entity.LogRecord {
	for i := range logs {
		if logs[i].ID == update.ID {
			logs[i].Apply(update)
			return logs
		}
	}

	out := make([]entity.LogRecord, 0, min(len(logs)+1, maxLogs))
	out = append(out, entity.NewLogRecord(update))
	for _, record := range logs {
		if len(out) >= maxLogs {
			break
		}
		out = append(out, record)
	}
	return out
}

package capture

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
)

// pendingEntry is the working copy of one in-flight request
type pendingEntry struct {
	record entity.LogRecord
	timer  *time.Timer
	delay  time.Duration
	gen    uint64 // bumped on every (re)schedule; stale timers compare against it
}

// Tracker is the correlation table: in-memory state for requests whose
// phases are still arriving.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*pendingEntry
	logger  *zap.Logger
}

func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		entries: make(map[string]*pendingEntry),
		logger:  logger.Named("tracker"),
	}
}

// Register starts tracking id, replacing any entry already using it
func (t *Tracker) Register(id string, record entity.LogRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.entries[id]; ok {
		t.logger.Debug("Correlation id reused", zap.String("request_id", id))
		stopTimer(old)
	}
	t.entries[id] = &pendingEntry{record: record.Clone()}
	trackedRequests.Set(float64(len(t.entries)))
}

// Merge applies update to the tracked entry. It returns false when id is not
// tracked. A pending release is pushed back by its full delay.
func (t *Tracker) Merge(id string, update *entity.LogUpdate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return false
	}

	entry.record.Apply(update)
	if entry.timer != nil {
		t.scheduleLocked(id, entry, entry.delay)
	}
	return true
}

// ReleaseAfter schedules removal of id after d, replacing any earlier schedule
func (t *Tracker) ReleaseAfter(id string, d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return false
	}
	t.scheduleLocked(id, entry, d)
	return true
}

func (t *Tracker) scheduleLocked(id string, entry *pendingEntry, d time.Duration) {
	stopTimer(entry)
	entry.gen++
	entry.delay = d

	gen := entry.gen
	entry.timer = time.AfterFunc(d, func() {
		t.expire(id, entry, gen)
	})
}

func (t *Tracker) expire(id string, entry *pendingEntry, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.entries[id]
	if !ok || current != entry || current.gen != gen {
		return
	}
	delete(t.entries, id)
	trackedRequests.Set(float64(len(t.entries)))
}

// Release removes id immediately
func (t *Tracker) Release(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[id]; ok {
		stopTimer(entry)
		delete(t.entries, id)
		trackedRequests.Set(float64(len(t.entries)))
	}
}

func (t *Tracker) Has(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[id]
	return ok
}

// Get returns a copy of the tracked record
func (t *Tracker) Get(id string) (entity.LogRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return entity.LogRecord{}, false
	}
	return entry.record.Clone(), true
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Close stops every pending timer and forgets all entries
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, entry := range t.entries {
		stopTimer(entry)
		delete(t.entries, id)
	}
	trackedRequests.Set(0)
}

func stopTimer(entry *pendingEntry) {
	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}
}

package capture

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/entity"
)

// Outcome says what the ingestor did with one notification
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeFiltered    Outcome = "filtered"
	OutcomeOrphan      Outcome = "orphan"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeDropped     Outcome = "dropped" // queue refused the update
)

const pingType = "ping"

// Ingestor is the front door: it filters lifecycle notifications, keeps the
// correlation table current and hands every resulting update to the queue.
type Ingestor struct {
	tracker   *Tracker
	queue     *Queue
	recording *RecordingState
	logger    *zap.Logger

	excludedSchemes []string
	trackedTypes    map[string]struct{}
	grace           time.Duration
	perPhaseCheck   bool
	limiter         *rate.Limiter

	now func() time.Time
}

func NewIngestor(
	cfg *config.Config,
	tracker *Tracker,
	queue *Queue,
	recording *RecordingState,
	logger *zap.Logger,
) *Ingestor {
	tracked := make(map[string]struct{}, len(cfg.Capture.TrackedTypes))
	for _, t := range cfg.Capture.TrackedTypes {
		tracked[t] = struct{}{}
	}

	grace := cfg.Capture.GracePeriod
	if grace <= 0 {
		grace = config.DefaultGracePeriod
	}

	var limiter *rate.Limiter
	if cfg.Capture.MaxEventsPerSecond > 0 {
		burst := int(cfg.Capture.MaxEventsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Capture.MaxEventsPerSecond), burst)
	}

	return &Ingestor{
		tracker:         tracker,
		queue:           queue,
		recording:       recording,
		logger:          logger.Named("ingestor"),
		excludedSchemes: cfg.Capture.ExcludedSchemes,
		trackedTypes:    tracked,
		grace:           grace,
		perPhaseCheck:   cfg.Capture.CheckRecordingPerPhase,
		limiter:         limiter,
		now:             time.Now,
	}
}

// Handle consumes one notification. It never waits on persistence.
func (i *Ingestor) Handle(ctx context.Context, event entity.LifecycleEvent) Outcome {
	outcome := i.handle(event)

	phase := "unknown"
	if event != nil {
		phase = string(event.Phase())
	}
	eventsTotal.WithLabelValues(phase, string(outcome)).Inc()

	if outcome != OutcomeAccepted {
		i.logger.Debug("Event not accepted",
			zap.String("phase", phase),
			zap.String("outcome", string(outcome)),
			zap.String("request_id", requestID(event)),
		)
	}
	return outcome
}

func (i *Ingestor) handle(event entity.LifecycleEvent) Outcome {
	if event == nil || event.RequestID() == "" {
		return OutcomeInvalid
	}

	if e, ok := event.(entity.InitiationEvent); ok {
		return i.initiate(e)
	}

	if i.perPhaseCheck && !i.recording.IsRecording() {
		return OutcomeFiltered
	}

	id := event.RequestID()
	update := &entity.LogUpdate{ID: id}

	switch e := event.(type) {
	case entity.HeadersSentEvent:
		update.RequestHeaders = headerMap(e.Headers)
	case entity.HeadersReceivedEvent:
		update.ResponseHeaders = headerMap(e.Headers)
	case entity.CompletedEvent:
		update.Status = ptr(e.StatusCode)
	case entity.ErrorEvent:
		update.Status = ptr(0)
		update.Error = ptr(e.Message)
	default:
		return OutcomeInvalid
	}

	if !i.tracker.Merge(id, update) {
		return OutcomeOrphan
	}

	switch event.(type) {
	case entity.CompletedEvent:
		i.tracker.ReleaseAfter(id, i.grace)
	case entity.ErrorEvent:
		i.tracker.Release(id)
	}

	return i.submit(update)
}

func (i *Ingestor) initiate(e entity.InitiationEvent) Outcome {
	if i.excluded(e.URL) || e.Type == pingType {
		return OutcomeFiltered
	}
	if !i.recording.IsRecording() {
		return OutcomeFiltered
	}
	if _, ok := i.trackedTypes[e.Type]; !ok {
		return OutcomeFiltered
	}
	if i.limiter != nil && !i.limiter.Allow() {
		return OutcomeRateLimited
	}

	update := &entity.LogUpdate{
		ID:          e.ID,
		URL:         ptr(e.URL),
		Method:      ptr(e.Method),
		RequestType: ptr(e.Type),
		Timestamp:   ptr(i.now().UnixMilli()),
		Status:      ptr(0),
		RequestBody: decodeBody(e.Body),
	}

	i.tracker.Register(e.ID, entity.NewLogRecord(update))
	return i.submit(update)
}

func (i *Ingestor) submit(update *entity.LogUpdate) Outcome {
	if err := i.queue.Submit(update); err != nil {
		i.logger.Warn("Failed to queue log update",
			zap.String("request_id", update.ID),
			zap.Error(err),
		)
		return OutcomeDropped
	}
	return OutcomeAccepted
}

func (i *Ingestor) excluded(url string) bool {
	for _, prefix := range i.excludedSchemes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// decodeBody prefers the first raw chunk; bytes that are not UTF-8 text
// become the binary sentinel.
func decodeBody(body *entity.EventBody) *entity.RequestBody {
	if body == nil {
		return nil
	}
	if len(body.Raw) > 0 {
		raw := body.Raw[0].Bytes
		if !utf8.Valid(raw) {
			return entity.BinaryBody()
		}
		return entity.TextBody(string(raw))
	}
	if body.FormData != nil {
		return entity.FormBody(body.FormData)
	}
	return nil
}

func headerMap(headers []entity.HTTPHeader) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h.Name] = h.Value
	}
	return out
}

func requestID(event entity.LifecycleEvent) string {
	if event == nil {
		return ""
	}
	return event.RequestID()
}

func ptr[T any](v T) *T {
	return &v
}

package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"traffic-recorder/internal/capture"
	"traffic-recorder/internal/config"
	"traffic-recorder/internal/delivery/http/handler"
	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/infrastructure/repository"
	"traffic-recorder/internal/infrastructure/store"
	"traffic-recorder/internal/usecase"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Default()
	logger := zap.NewNop()
	kv := store.NewMemoryStore(logger)
	codec, err := repository.NewCodec(cfg)
	require.NoError(t, err)

	logRepo := repository.NewLogRepository(kv, codec, logger)
	recRepo := repository.NewRecordingRepository(kv, codec)

	tracker := capture.NewTracker(logger)
	queue := capture.NewQueue(logRepo, cfg, logger)
	state := capture.NewRecordingState(recRepo)
	badge := capture.NewBadgeIndicator()
	ingestor := capture.NewIngestor(cfg, tracker, queue, state, logger)

	queue.Start(context.Background())
	t.Cleanup(func() {
		tracker.Close()
		_ = queue.Stop(context.Background())
		_ = kv.Close()
	})

	logs := usecase.NewLogUsecase(logRepo, kv, queue, logger)
	recording := usecase.NewRecordingUsecase(recRepo, state, badge, logger)
	ingest := usecase.NewIngestUsecase(ingestor, logger)

	r := NewRouter(
		cfg,
		handler.NewHealthHandler(cfg, queue, tracker),
		handler.NewEventHandler(ingest, logger),
		handler.NewLogHandler(logs, cfg, logger),
		handler.NewRecordingHandler(recording, logger),
	)
	return r.Setup()
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, entity.APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out entity.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	status, resp := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "memory", data["store"])
}

func TestRecordingAndIndicator(t *testing.T) {
	app := setupApp(t)

	status, resp := do(t, app, http.MethodPut, "/api/v1/recording", `{"recording": true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"recording": true}, resp.Data)

	_, resp = do(t, app, http.MethodGet, "/api/v1/recording", "")
	assert.Equal(t, map[string]interface{}{"recording": true}, resp.Data)

	_, resp = do(t, app, http.MethodGet, "/api/v1/indicator", "")
	assert.Equal(t, map[string]interface{}{"text": "REC", "color": "#ef4444"}, resp.Data)

	status, resp = do(t, app, http.MethodPut, "/api/v1/recording", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)
}

func TestEventsAndLogs(t *testing.T) {
	app := setupApp(t)

	_, _ = do(t, app, http.MethodPut, "/api/v1/recording", `{"recording": true}`)

	status, resp := do(t, app, http.MethodPost, "/api/v1/events", `[
		{"phase": "initiation", "requestId": "r1", "url": "https://a.test/x", "method": "GET", "type": "xmlhttprequest"},
		{"phase": "headers_received", "requestId": "r1", "responseHeaders": [{"name": "Content-Type", "value": "application/json"}]},
		{"phase": "completed", "requestId": "r1", "statusCode": 200},
		{"phase": "initiation", "requestId": "r2", "url": "https://a.test/p", "method": "POST", "type": "fetch",
		 "requestBody": {"raw": [{"bytes": "//4AgQ=="}]}},
		{"phase": "headers_sent", "requestId": "ghost"},
		{"phase": "teleported", "requestId": "r3"}
	]`)
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, map[string]interface{}{
		"accepted": float64(4), "filtered": float64(0), "orphaned": float64(1),
		"rate_limited": float64(0), "rejected": float64(1),
	}, resp.Data)

	status, _ = do(t, app, http.MethodPost, "/api/v1/events",
		`{"phase": "completed", "requestId": "r2", "statusCode": 201}`)
	require.Equal(t, http.StatusAccepted, status)

	require.Eventually(t, func() bool {
		_, resp := do(t, app, http.MethodGet, "/api/v1/logs/r2", "")
		data, ok := resp.Data.(map[string]interface{})
		return ok && data["status"] == float64(201)
	}, 2*time.Second, 20*time.Millisecond)

	_, resp = do(t, app, http.MethodGet, "/api/v1/logs", "")
	records := resp.Data.([]interface{})
	require.Len(t, records, 2)
	assert.Equal(t, 2, resp.Meta.Count)

	newest := records[0].(map[string]interface{})
	assert.Equal(t, "r2", newest["id"])
	assert.Equal(t, entity.BinaryBodySentinel, newest["requestBody"])

	oldest := records[1].(map[string]interface{})
	assert.Equal(t, "r1", oldest["id"])
	assert.Equal(t, float64(200), oldest["status"])
	assert.Equal(t, map[string]interface{}{"Content-Type": "application/json"}, oldest["responseHeaders"])

	_, resp = do(t, app, http.MethodGet, "/api/v1/logs?limit=1", "")
	assert.Len(t, resp.Data, 1)

	status, _ = do(t, app, http.MethodGet, "/api/v1/logs/missing", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodDelete, "/api/v1/logs", "")
	assert.Equal(t, http.StatusOK, status)

	_, resp = do(t, app, http.MethodGet, "/api/v1/logs", "")
	assert.Empty(t, resp.Data)
}

func TestEvents_BadInput(t *testing.T) {
	app := setupApp(t)

	status, resp := do(t, app, http.MethodPost, "/api/v1/events", `{"phase": "teleported", "requestId": "x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PHASE", resp.Error.Code)

	status, _ = do(t, app, http.MethodPost, "/api/v1/events", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/events", ``)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(t)

	status, resp := do(t, app, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

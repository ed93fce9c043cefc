package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-recorder/internal/domain/entity"
)

// fakeRecorder serves the subset of the recorder API the CLI calls
type fakeRecorder struct {
	mu        sync.Mutex
	recording bool
	logs      []entity.LogRecord
	lastBody  string
	lastQuery string
}

func (f *fakeRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.lastBody = string(body)
	f.lastQuery = r.URL.RawQuery

	reply := func(status int, resp *entity.APIResponse) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		reply(http.StatusOK, entity.NewSuccessResponse(map[string]interface{}{
			"status":           "healthy",
			"version":          "1.0.0",
			"store":            "memory",
			"queue_depth":      2,
			"tracked_requests": 3,
		}, "Service is healthy"))
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/recording":
		reply(http.StatusOK, entity.NewSuccessResponse(RecordResult{Recording: f.recording}, "OK"))
	case r.Method == http.MethodPut && r.URL.Path == "/api/v1/recording":
		var req struct {
			Recording bool `json:"recording"`
		}
		_ = json.Unmarshal(body, &req)
		f.recording = req.Recording
		reply(http.StatusOK, entity.NewSuccessResponse(RecordResult{Recording: f.recording}, "OK"))
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/indicator":
		text := ""
		if f.recording {
			text = "REC"
		}
		reply(http.StatusOK, entity.NewSuccessResponse(entity.IndicatorState{Text: text}, "OK"))
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/logs":
		reply(http.StatusOK, entity.NewListResponse(f.logs, len(f.logs), 100))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v1/logs/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/logs/")
		for _, l := range f.logs {
			if l.ID == id {
				reply(http.StatusOK, entity.NewSuccessResponse(l, "OK"))
				return
			}
		}
		reply(http.StatusNotFound, entity.NewErrorResponse("NOT_FOUND", "log not found"))
	case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/logs":
		f.logs = nil
		reply(http.StatusOK, entity.NewSuccessResponse(nil, "Logs cleared"))
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/events":
		reply(http.StatusAccepted, entity.NewSuccessResponse(entity.IngestResult{Accepted: 1, Filtered: 1}, "Events processed"))
	default:
		reply(http.StatusNotFound, entity.NewErrorResponse("NOT_FOUND", "no route"))
	}
}

func newFakeRecorder(t *testing.T) (*fakeRecorder, *httptest.Server) {
	t.Helper()
	f := &fakeRecorder{
		logs: []entity.LogRecord{
			{ID: "2", URL: "https://example.com/b", Method: "POST", RequestType: "xmlhttprequest", Timestamp: 1700000001000, Status: 201},
			{ID: "1", URL: "https://example.com/a", Method: "GET", RequestType: "main_frame", Timestamp: 1700000000000},
		},
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

// execute runs the root command and returns what it printed to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logsLimit = 0
	ingestFile = ""

	var runErr error
	out := captureStdout(t, func() {
		root := newRootCmd()
		root.SetArgs(args)
		runErr = root.Execute()
	})
	return out, runErr
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	fn()
	require.NoError(t, w.Close())
	return <-done
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"status", "record", "logs", "clear", "ingest"})

	for _, flag := range []string{"output", "server", "timeout", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "o", root.PersistentFlags().Lookup("output").Shorthand)
}

func TestStatus(t *testing.T) {
	f, srv := newFakeRecorder(t)
	f.recording = true

	out, err := execute(t, "--server", srv.URL, "-o", "json", "status")
	require.NoError(t, err)

	var result StatusResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, srv.URL, result.Server)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "memory", result.Store)
	assert.Equal(t, 2, result.QueueDepth)
	assert.Equal(t, 3, result.TrackedRequests)
	assert.True(t, result.Recording)
	assert.Equal(t, "REC", result.Badge)
}

func TestStatusTable(t *testing.T) {
	_, srv := newFakeRecorder(t)

	out, err := execute(t, "--server", srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "healthy")
	assert.Regexp(t, `RECORDING\s+off`, out)
}

func TestRecord(t *testing.T) {
	f, srv := newFakeRecorder(t)

	out, err := execute(t, "--server", srv.URL, "-o", "json", "record", "on")
	require.NoError(t, err)
	assert.JSONEq(t, `{"recording":true}`, f.lastBody)
	assert.JSONEq(t, `{"recording":true}`, out)

	_, err = execute(t, "--server", srv.URL, "record", "off")
	require.NoError(t, err)
	assert.False(t, f.recording)

	_, err = execute(t, "--server", srv.URL, "record", "maybe")
	assert.ErrorContains(t, err, "expected on or off")
}

func TestLogs(t *testing.T) {
	f, srv := newFakeRecorder(t)

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "--server", srv.URL, "-o", "json", "logs", "--limit", "5")
		require.NoError(t, err)
		assert.Equal(t, "limit=5", f.lastQuery)

		var result LogsResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, "2", result.Logs[0].ID)
	})

	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "--server", srv.URL, "logs")
		require.NoError(t, err)
		assert.Empty(t, f.lastQuery)
		assert.Contains(t, out, "https://example.com/a")
		assert.Contains(t, out, "pending")
		assert.Contains(t, out, "201")
	})

	t.Run("single as yaml", func(t *testing.T) {
		out, err := execute(t, "--server", srv.URL, "-o", "yaml", "logs", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "id: \"2\"")
		assert.Contains(t, out, "method: POST")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := execute(t, "--server", srv.URL, "logs", "404")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOT_FOUND")
	})
}

func TestClear(t *testing.T) {
	f, srv := newFakeRecorder(t)

	out, err := execute(t, "--server", srv.URL, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Logs cleared")
	assert.Empty(t, f.logs)
}

func TestIngest(t *testing.T) {
	f, srv := newFakeRecorder(t)

	events := `[{"phase":"initiation","requestId":"1","url":"https://example.com","method":"GET","type":"xmlhttprequest"}]`
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(events), 0o600))

	out, err := execute(t, "--server", srv.URL, "-o", "json", "ingest", "-f", path)
	require.NoError(t, err)
	assert.JSONEq(t, events, f.lastBody)

	var result entity.IngestResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 1, result.Filtered)
}

func TestIngestInvalidJSON(t *testing.T) {
	_, srv := newFakeRecorder(t)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := execute(t, "--server", srv.URL, "ingest", "-f", path)
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestIngestRequiresFilename(t *testing.T) {
	_, srv := newFakeRecorder(t)

	_, err := execute(t, "--server", srv.URL, "ingest")
	assert.ErrorContains(t, err, "filename")
}

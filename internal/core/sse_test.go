package core

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amoylab/mockmcp/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSSEServer(t *testing.T, mutate ...func(*config.MockServerConfig)) (*Server, *httptest.Server) {
	t.Helper()
	s, _ := newTestServer(t, mutate...)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

// openSSE connects to /sse and returns the reader plus the message path from
// the endpoint event.
func openSSE(t *testing.T, ts *httptest.Server) (*http.Response, *bufio.Reader, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + "/sse")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	ev := readSSEEvent(t, r)
	require.Equal(t, "endpoint", ev.event)
	require.True(t, strings.HasPrefix(ev.data, "/message/"), "endpoint path %q", ev.data)
	return resp, r, ev.data
}

func postMessage(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSSESessionFlow(t *testing.T) {
	_, ts := startSSEServer(t)

	stream, r, msgPath := openSSE(t, ts)
	defer stream.Body.Close()

	resp := postMessage(t, ts, msgPath,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add_numbers","arguments":{"a":2,"b":3}}}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	ev := readSSEEvent(t, r)
	require.Equal(t, "message", ev.event)
	frame := decodeJSON(t, ev.data)
	assert.Equal(t, float64(1), frame["id"])
	text := frame["result"].(map[string]any)["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Equal(t, "2 + 3 = 5", text)
}

func TestSSEProgressOverSession(t *testing.T) {
	_, ts := startSSEServer(t)

	stream, r, msgPath := openSSE(t, ts)
	defer stream.Body.Close()

	postMessage(t, ts, msgPath,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"search_with_progress","arguments":{"query":"zap","steps":2},"_meta":{"progressToken":"s1"}}}`)

	for i := 1; i <= 2; i++ {
		ev := readSSEEvent(t, r)
		frame := decodeJSON(t, ev.data)
		require.Equal(t, "notifications/progress", frame["method"])
		params := frame["params"].(map[string]any)
		assert.Equal(t, float64(i), params["progress"])
		assert.Equal(t, float64(3), params["total"])
	}

	ev := readSSEEvent(t, r)
	frame := decodeJSON(t, ev.data)
	assert.Equal(t, float64(2), frame["id"])
	assert.Contains(t, frame, "result")
}

func TestSSESequentialMessages(t *testing.T) {
	_, ts := startSSEServer(t)

	stream, r, msgPath := openSSE(t, ts)
	defer stream.Body.Close()

	// both accepted immediately; responses arrive in order on the stream
	postMessage(t, ts, msgPath, `{"jsonrpc":"2.0","id":"a","method":"tools/list"}`)
	postMessage(t, ts, msgPath, `{"jsonrpc":"2.0","id":"b","method":"tools/list"}`)

	first := decodeJSON(t, readSSEEvent(t, r).data)
	second := decodeJSON(t, readSSEEvent(t, r).data)
	assert.Equal(t, "a", first["id"])
	assert.Equal(t, "b", second["id"])
}

func TestSSEMessageUnknownSession(t *testing.T) {
	s, ts := startSSEServer(t)

	resp := postMessage(t, ts, "/message/no-such-session", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// a rejected message must not touch the registry
	conns, err := s.sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestSSEMessageInvalidJSON(t *testing.T) {
	_, ts := startSSEServer(t)

	stream, _, msgPath := openSSE(t, ts)
	defer stream.Body.Close()

	resp := postMessage(t, ts, msgPath, `{broken`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSSEKeepAlive(t *testing.T) {
	_, ts := startSSEServer(t, func(cfg *config.MockServerConfig) {
		cfg.SSE.KeepAliveInterval = 20 * time.Millisecond
	})

	stream, r, _ := openSSE(t, ts)
	defer stream.Body.Close()

	ev := readSSEEvent(t, r)
	assert.Equal(t, "keep-alive", ev.comment)
}

func TestSSEDisconnectCleansUpSession(t *testing.T) {
	s, ts := startSSEServer(t)

	stream, _, _ := openSSE(t, ts)

	conns, err := s.sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 1)

	stream.Body.Close()

	assert.Eventually(t, func() bool {
		conns, err := s.sessions.List(context.Background())
		return err == nil && len(conns) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHealthReportsActiveSessions(t *testing.T) {
	_, ts := startSSEServer(t)

	stream, _, msgPath := openSSE(t, ts)
	defer stream.Body.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status         string   `json:"status"`
		ActiveSessions int      `json:"active_sessions"`
		Sessions       []string `json:"sessions"`
	}
	require.NoError(t, jsonDecode(resp.Body, &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 1, body.ActiveSessions)
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "/message/"+body.Sessions[0], msgPath)
}
